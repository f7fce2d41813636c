package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Notes go away with their lead. Notifications keep a bare lead_id so the
// history survives deletion.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id                   UUID PRIMARY KEY,
		owner_id             UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		full_name            TEXT NOT NULL,
		phone                TEXT NOT NULL DEFAULT '',
		email                TEXT NOT NULL DEFAULT '',
		address              TEXT NOT NULL DEFAULT '',
		city                 TEXT NOT NULL DEFAULT '',
		state                TEXT NOT NULL DEFAULT '',
		stage                TEXT NOT NULL DEFAULT 'New',
		estimated_value      NUMERIC(14,2) NOT NULL DEFAULT 0,
		appointment_datetime TEXT NOT NULL DEFAULT '',
		created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_owner_created ON leads (owner_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS notes (
		id         UUID PRIMARY KEY,
		lead_id    UUID NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
		owner_id   UUID NOT NULL,
		note_text  TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_lead_created ON notes (lead_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id                UUID PRIMARY KEY,
		owner_id          UUID NOT NULL,
		lead_id           UUID NULL,
		channel           TEXT NOT NULL,
		to_value          TEXT NOT NULL,
		subject           TEXT NULL,
		message           TEXT NOT NULL,
		status            TEXT NOT NULL,
		provider_response TEXT NOT NULL DEFAULT '',
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_owner_created ON notifications (owner_id, created_at DESC)`,
}

// Migrate creates any missing tables. It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
