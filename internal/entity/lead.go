package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrLeadNotFound          = errors.New("lead not found")
	ErrFullNameRequired      = errors.New("full_name is required")
	ErrNegativeEstimateValue = errors.New("estimated_value must not be negative")
	ErrEstimateValueTooLarge = errors.New("estimated_value is too large")
)

// Estimated values are stored as NUMERIC(14,2).
const EstimateValueScale = 2

var MaxEstimateValue = decimal.RequireFromString("999999999999.99")

// Lead is a prospective job tracked through the pipeline. It belongs to
// exactly one owner; every store lookup is keyed by (OwnerID, ID).
type Lead struct {
	ID                  string          `json:"id"`
	OwnerID             string          `json:"-"`
	FullName            string          `json:"full_name"`
	Phone               string          `json:"phone"`
	Email               string          `json:"email"`
	Address             string          `json:"address"`
	City                string          `json:"city"`
	State               string          `json:"state"`
	Stage               Stage           `json:"stage"`
	EstimatedValue      decimal.Decimal `json:"estimated_value"`
	AppointmentDatetime string          `json:"appointment_datetime"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// LeadFields holds the mutable attributes of a lead.
type LeadFields struct {
	FullName            string
	Phone               string
	Email               string
	Address             string
	City                string
	State               string
	Stage               Stage
	EstimatedValue      decimal.Decimal
	AppointmentDatetime string
}

// NewLead builds a lead for ownerID. A zero Stage defaults to New.
func NewLead(ownerID string, f LeadFields) (*Lead, error) {
	now := time.Now().UTC()
	lead := &Lead{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Stage:     StageNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := lead.Apply(f); err != nil {
		return nil, err
	}
	lead.UpdatedAt = now
	return lead, nil
}

// Apply replaces every mutable attribute with f. A zero Stage keeps the
// current stage.
func (l *Lead) Apply(f LeadFields) error {
	f.normalize()
	if f.Stage == 0 {
		f.Stage = l.Stage
	}
	if err := f.Validate(); err != nil {
		return err
	}

	l.FullName = f.FullName
	l.Phone = f.Phone
	l.Email = f.Email
	l.Address = f.Address
	l.City = f.City
	l.State = f.State
	l.Stage = f.Stage
	l.EstimatedValue = f.EstimatedValue
	l.AppointmentDatetime = f.AppointmentDatetime
	l.UpdatedAt = time.Now().UTC()
	return nil
}

func (f LeadFields) Validate() error {
	if strings.TrimSpace(f.FullName) == "" {
		return ErrFullNameRequired
	}
	if !f.Stage.Valid() {
		return ErrInvalidStage
	}
	if f.EstimatedValue.IsNegative() {
		return ErrNegativeEstimateValue
	}
	if f.EstimatedValue.GreaterThan(MaxEstimateValue) {
		return ErrEstimateValueTooLarge
	}
	return nil
}

func (f *LeadFields) normalize() {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Email = strings.TrimSpace(f.Email)
	f.Address = strings.TrimSpace(f.Address)
	f.City = strings.TrimSpace(f.City)
	f.State = strings.TrimSpace(f.State)
	f.AppointmentDatetime = strings.TrimSpace(f.AppointmentDatetime)
	f.EstimatedValue = f.EstimatedValue.Round(EstimateValueScale)
}

// Snapshot returns a copy that later mutations of l do not affect.
func (l *Lead) Snapshot() Lead {
	return *l
}

// LeadFilter narrows List. A zero Stage lists every stage.
type LeadFilter struct {
	Stage Stage
}

// LeadRepositoryInterface is the record store for leads. Implementations
// must scope every statement by owner.
type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	List(ctx context.Context, ownerID string, filter LeadFilter) ([]*Lead, error)
	FindByID(ctx context.Context, ownerID, id string) (*Lead, error)
	// UpdateInTx locks the row, hands the current state to mutate and writes
	// the result in the same transaction. It returns the state read before
	// mutate ran and the state written.
	UpdateInTx(ctx context.Context, ownerID, id string, mutate func(*Lead) error) (before, after *Lead, err error)
	// Delete removes the lead and its notes. Notifications keep their
	// lead_id.
	Delete(ctx context.Context, ownerID, id string) error
}
