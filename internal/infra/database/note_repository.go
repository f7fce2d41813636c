package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/contractorconnect/internal/entity"
)

type NoteRepository struct {
	DB *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{DB: db}
}

func (r *NoteRepository) Create(ctx context.Context, note *entity.Note) error {
	query := `
		INSERT INTO notes (id, lead_id, owner_id, note_text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.DB.ExecContext(ctx, query, note.ID, note.LeadID, note.OwnerID, note.NoteText, note.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (r *NoteRepository) FindByLeadID(ctx context.Context, ownerID, leadID string) ([]*entity.Note, error) {
	query := `
		SELECT id, lead_id, owner_id, note_text, created_at
		FROM notes
		WHERE lead_id = $1 AND owner_id = $2
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, leadID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := []*entity.Note{}
	for rows.Next() {
		n := &entity.Note{}
		if err := rows.Scan(&n.ID, &n.LeadID, &n.OwnerID, &n.NoteText, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
