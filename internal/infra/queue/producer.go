package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StageChangedPayload is published after a committed stage change.
type StageChangedPayload struct {
	OwnerID    string    `json:"owner_id"`
	LeadID     string    `json:"lead_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Notified   bool      `json:"notified"`
	OccurredAt time.Time `json:"occurred_at"`
}

type QueueProducerInterface interface {
	PublishStageChanged(ctx context.Context, payload StageChangedPayload) error
}

// Publisher is the subset of *amqp.Channel the producer needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishStageChanged(ctx context.Context, payload StageChangedPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal stage event: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    payload.OccurredAt,
			Type:         RoutingKey,
		},
	)
	if err != nil {
		return fmt.Errorf("publish stage event: %w", err)
	}
	return nil
}

// NoopProducer is used when no broker is configured.
type NoopProducer struct{}

func (NoopProducer) PublishStageChanged(context.Context, StageChangedPayload) error {
	return nil
}
