package mail

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

// ErrNotConfigured is returned by Send when no SMTP host was provided.
var ErrNotConfigured = errors.New("smtp not configured")

// MaxInFlight caps concurrent SMTP sessions.
const MaxInFlight = 4

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	s := &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		inflight: make(chan struct{}, MaxInFlight),
	}
	if host != "" {
		s.dialer = gomail.NewDialer(host, port, user, password)
	}
	return s
}

func (s *EmailSender) Configured() bool {
	return s != nil && s.dialer != nil && s.From != ""
}

// Send hands the message to the SMTP relay. gomail has no context support, so
// the session runs in a goroutine and Send returns as soon as ctx ends. gomail
// bounds the TCP connect at 10s but not the SMTP exchange, so an abandoned
// session keeps its slot until the relay answers or drops it; with every slot
// held, Send fails once ctx ends instead of starting another session.
func (s *EmailSender) Send(ctx context.Context, msg Message) (string, error) {
	if !s.Configured() {
		return "", ErrNotConfigured
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	select {
	case s.inflight <- struct{}{}:
	case <-ctx.Done():
		return "", fmt.Errorf("smtp send to %s: relay busy: %w", msg.To, ctx.Err())
	}

	done := make(chan error, 1)
	go func() {
		defer func() { <-s.inflight }()
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("smtp send to %s: %w", msg.To, err)
		}
		return fmt.Sprintf("accepted by %s:%d", s.Host, s.Port), nil
	case <-ctx.Done():
		return "", fmt.Errorf("smtp send to %s: %w", msg.To, ctx.Err())
	}
}
