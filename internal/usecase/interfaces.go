package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/xavierca1/contractorconnect/internal/entity"
	"github.com/xavierca1/contractorconnect/internal/infra/queue"
)

// ErrDeliveryNotConfigured is returned by a Deliverer that has no provider
// for the requested channel. The attempt is recorded as logged.
var ErrDeliveryNotConfigured = errors.New("delivery provider not configured")

// DeliveryMessage is one outbound send.
type DeliveryMessage struct {
	Channel entity.Channel
	To      string
	Subject string
	Body    string
}

// Deliverer transmits a message through an external provider. It must honour
// ctx cancellation. The returned string is the provider's response summary.
type Deliverer interface {
	Deliver(ctx context.Context, msg DeliveryMessage) (string, error)
}

// AutoNotifier is the automatic entry point of the notification engine.
type AutoNotifier interface {
	SendAutomatic(ctx context.Context, id entity.Identity, lead *entity.Lead) (*entity.Notification, error)
}

type QueueProducerInterface = queue.QueueProducerInterface

// MetricsRecorder receives domain counters. A nil recorder is ignored.
type MetricsRecorder interface {
	RecordNotification(channel, status string)
	RecordStageTransition(from, to string)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// TokenIssuer issues and validates bearer credentials.
type TokenIssuer interface {
	Issue(user *entity.User) (token string, expiresAt time.Time, err error)
	Validate(token string) (entity.Identity, error)
}
