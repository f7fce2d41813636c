package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/xavierca1/contractorconnect/internal/entity"
	"github.com/xavierca1/contractorconnect/internal/infra/integration/twilio"
	"github.com/xavierca1/contractorconnect/internal/infra/mail"
	"github.com/xavierca1/contractorconnect/internal/usecase"
)

type EmailSender interface {
	Configured() bool
	Send(ctx context.Context, msg mail.Message) (string, error)
}

type SMSSender interface {
	Configured() bool
	SendSMS(ctx context.Context, input twilio.SendSMSInput) (*twilio.MessageResponse, error)
}

// Router picks the provider for a channel. A channel without a configured
// provider answers usecase.ErrDeliveryNotConfigured.
type Router struct {
	Email EmailSender
	SMS   SMSSender
}

func NewRouter(email EmailSender, sms SMSSender) *Router {
	return &Router{Email: email, SMS: sms}
}

// Channels reports which channels have a live provider.
func (r *Router) Channels() []entity.Channel {
	var out []entity.Channel
	if r.Email != nil && r.Email.Configured() {
		out = append(out, entity.ChannelEmail)
	}
	if r.SMS != nil && r.SMS.Configured() {
		out = append(out, entity.ChannelSMS)
	}
	return out
}

func (r *Router) Deliver(ctx context.Context, msg usecase.DeliveryMessage) (string, error) {
	switch msg.Channel {
	case entity.ChannelEmail:
		if r.Email == nil || !r.Email.Configured() {
			return "", fmt.Errorf("email: %w", usecase.ErrDeliveryNotConfigured)
		}
		resp, err := r.Email.Send(ctx, mail.Message{To: msg.To, Subject: msg.Subject, Body: msg.Body})
		if errors.Is(err, mail.ErrNotConfigured) {
			return "", fmt.Errorf("email: %w", usecase.ErrDeliveryNotConfigured)
		}
		return resp, err

	case entity.ChannelSMS:
		if r.SMS == nil || !r.SMS.Configured() {
			return "", fmt.Errorf("sms: %w", usecase.ErrDeliveryNotConfigured)
		}
		out, err := r.SMS.SendSMS(ctx, twilio.SendSMSInput{To: msg.To, Body: msg.Body})
		if err != nil {
			if errors.Is(err, twilio.ErrNotConfigured) {
				return "", fmt.Errorf("sms: %w", usecase.ErrDeliveryNotConfigured)
			}
			return "", err
		}
		return fmt.Sprintf("sid=%s status=%s", out.SID, out.Status), nil
	}
	return "", fmt.Errorf("unsupported channel %q", msg.Channel)
}
