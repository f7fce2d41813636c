package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNoteTextRequired = errors.New("note_text is required")

// Note is an append-only remark on a lead. Notes are removed with their lead.
type Note struct {
	ID        string    `json:"id"`
	LeadID    string    `json:"lead_id"`
	OwnerID   string    `json:"-"`
	NoteText  string    `json:"note_text"`
	CreatedAt time.Time `json:"created_at"`
}

func NewNote(ownerID, leadID, text string) (*Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoteTextRequired
	}
	return &Note{
		ID:        uuid.New().String(),
		LeadID:    leadID,
		OwnerID:   ownerID,
		NoteText:  text,
		CreatedAt: time.Now().UTC(),
	}, nil
}

type NoteRepositoryInterface interface {
	Create(ctx context.Context, note *Note) error
	// FindByLeadID returns the notes newest first.
	FindByLeadID(ctx context.Context, ownerID, leadID string) ([]*Note, error)
}
