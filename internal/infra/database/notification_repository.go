package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/contractorconnect/internal/entity"
)

// NotificationRepository is append-only: records are never updated.
type NotificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO notifications (id, owner_id, lead_id, channel, to_value, subject, message, status, provider_response, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.DB.ExecContext(ctx, query,
		n.ID,
		n.OwnerID,
		n.LeadID,
		string(n.Channel),
		n.ToValue,
		n.Subject,
		n.Message,
		string(n.Status),
		n.ProviderResponse,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*entity.Notification, error) {
	query := `
		SELECT id, owner_id, lead_id, channel, to_value, subject, message, status, provider_response, created_at
		FROM notifications
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.DB.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := []*entity.Notification{}
	for rows.Next() {
		n := &entity.Notification{}
		var channel, status string
		err := rows.Scan(
			&n.ID,
			&n.OwnerID,
			&n.LeadID,
			&channel,
			&n.ToValue,
			&n.Subject,
			&n.Message,
			&status,
			&n.ProviderResponse,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Channel = entity.Channel(channel)
		n.Status = entity.NotificationStatus(status)
		out = append(out, n)
	}
	return out, rows.Err()
}
