package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/xavierca1/contractorconnect/internal/entity"
)

// invalidTextRepresentation is raised when a key is not a valid UUID.
const invalidTextRepresentation = "22P02"

// noSuchLead reports errors that mean the (id, owner) pair names no row.
func noSuchLead(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == invalidTextRepresentation
}

const leadColumns = `id, owner_id, full_name, phone, email, address, city, state, stage, estimated_value, appointment_datetime, created_at, updated_at`

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	l := &entity.Lead{}
	var stage string
	err := row.Scan(
		&l.ID,
		&l.OwnerID,
		&l.FullName,
		&l.Phone,
		&l.Email,
		&l.Address,
		&l.City,
		&l.State,
		&stage,
		&l.EstimatedValue,
		&l.AppointmentDatetime,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if l.Stage, err = entity.ParseStage(stage); err != nil {
		return nil, fmt.Errorf("lead %s has stage %q: %w", l.ID, stage, err)
	}
	return l, nil
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.OwnerID,
		lead.FullName,
		lead.Phone,
		lead.Email,
		lead.Address,
		lead.City,
		lead.State,
		lead.Stage.String(),
		lead.EstimatedValue,
		lead.AppointmentDatetime,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

// List returns the owner's leads, newest first.
func (r *LeadRepository) List(ctx context.Context, ownerID string, filter entity.LeadFilter) ([]*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE owner_id = $1`
	args := []any{ownerID}
	if filter.Stage != 0 {
		query += ` AND stage = $2`
		args = append(args, filter.Stage.String())
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := []*entity.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}

func (r *LeadRepository) FindByID(ctx context.Context, ownerID, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND owner_id = $2`
	l, err := scanLead(r.DB.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if noSuchLead(err) {
			return nil, entity.ErrLeadNotFound
		}
		return nil, fmt.Errorf("find lead: %w", err)
	}
	return l, nil
}

// UpdateInTx reads the row with FOR UPDATE, so a concurrent update of the
// same lead waits and then sees this one's result as its previous state.
func (r *LeadRepository) UpdateInTx(ctx context.Context, ownerID, id string, mutate func(*entity.Lead) error) (*entity.Lead, *entity.Lead, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin lead update: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND owner_id = $2 FOR UPDATE`
	current, err := scanLead(tx.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if noSuchLead(err) {
			return nil, nil, entity.ErrLeadNotFound
		}
		return nil, nil, fmt.Errorf("lock lead: %w", err)
	}

	before := current.Snapshot()
	if err := mutate(current); err != nil {
		return nil, nil, err
	}

	update := `
		UPDATE leads SET
			full_name = $3,
			phone = $4,
			email = $5,
			address = $6,
			city = $7,
			state = $8,
			stage = $9,
			estimated_value = $10,
			appointment_datetime = $11,
			updated_at = $12
		WHERE id = $1 AND owner_id = $2
	`
	_, err = tx.ExecContext(ctx, update,
		current.ID,
		current.OwnerID,
		current.FullName,
		current.Phone,
		current.Email,
		current.Address,
		current.City,
		current.State,
		current.Stage.String(),
		current.EstimatedValue,
		current.AppointmentDatetime,
		current.UpdatedAt,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("update lead: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit lead update: %w", err)
	}
	return &before, current, nil
}

// Delete removes the lead and its notes in one transaction. Notification rows
// are left alone.
func (r *LeadRepository) Delete(ctx context.Context, ownerID, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin lead delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE lead_id = $1 AND owner_id = $2`, id, ownerID); err != nil {
		if noSuchLead(err) {
			return entity.ErrLeadNotFound
		}
		return fmt.Errorf("delete notes: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM leads WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		if noSuchLead(err) {
			return entity.ErrLeadNotFound
		}
		return fmt.Errorf("delete lead: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit lead delete: %w", err)
	}
	return nil
}
