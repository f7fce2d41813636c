package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidChannel = errors.New("channel must be email or sms")

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

func ParseChannel(s string) (Channel, error) {
	switch Channel(strings.ToLower(strings.TrimSpace(s))) {
	case ChannelEmail:
		return ChannelEmail, nil
	case ChannelSMS:
		return ChannelSMS, nil
	}
	return "", ErrInvalidChannel
}

// NotificationStatus is the outcome of the single delivery attempt.
type NotificationStatus string

const (
	StatusSent   NotificationStatus = "sent"
	StatusFailed NotificationStatus = "failed"
	// StatusLogged means no delivery provider was configured for the channel.
	StatusLogged NotificationStatus = "logged"
)

// Notification is an immutable record of one outbound contact attempt.
// LeadID is a plain back-reference: it may point at a deleted lead.
type Notification struct {
	ID               string             `json:"id"`
	OwnerID          string             `json:"-"`
	LeadID           *string            `json:"lead_id"`
	Channel          Channel            `json:"channel"`
	ToValue          string             `json:"to_value"`
	Subject          *string            `json:"subject"`
	Message          string             `json:"message"`
	Status           NotificationStatus `json:"status"`
	ProviderResponse string             `json:"provider_response,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

func NewNotification(ownerID string, leadID *string, channel Channel, to string, subject *string, message string) *Notification {
	return &Notification{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		LeadID:    leadID,
		Channel:   channel,
		ToValue:   to,
		Subject:   subject,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}

type NotificationRepositoryInterface interface {
	Create(ctx context.Context, n *Notification) error
	// ListByOwner returns at most limit records, newest first.
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*Notification, error)
}
