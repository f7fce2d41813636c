package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const DefaultBaseURL = "https://api.twilio.com"

var ErrNotConfigured = errors.New("twilio not configured")

type Client struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	httpClient *http.Client
}

func NewClient(accountSID, authToken, from, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.accountSID != "" && c.authToken != "" && c.from != ""
}

// SendSMS posts one message. The request is bound to ctx, so the caller's
// deadline caps the whole round trip.
func (c *Client) SendSMS(ctx context.Context, input SendSMSInput) (*MessageResponse, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	form := url.Values{}
	form.Set("To", input.To)
	form.Set("From", c.from)
	form.Set("Body", input.Body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, url.PathEscape(c.accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("twilio: build request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twilio: send: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("twilio: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("twilio: %d %s (code %d)", resp.StatusCode, apiErr.Message, apiErr.Code)
		}
		return nil, fmt.Errorf("twilio: unexpected status %d", resp.StatusCode)
	}

	var out MessageResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("twilio: decode response: %w", err)
	}
	if out.ErrorMessage != nil && *out.ErrorMessage != "" {
		return nil, fmt.Errorf("twilio: %s", *out.ErrorMessage)
	}
	return &out, nil
}
