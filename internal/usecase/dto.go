package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xavierca1/contractorconnect/internal/entity"
)

// LeadInput carries the mutable lead attributes for create and update.
// Stage is the display name; empty means New on create and "unchanged" on
// update.
type LeadInput struct {
	FullName            string           `json:"full_name" validate:"required,max=160"`
	Phone               string           `json:"phone" validate:"max=50"`
	Email               string           `json:"email" validate:"max=160"`
	Address             string           `json:"address" validate:"max=200"`
	City                string           `json:"city" validate:"max=120"`
	State               string           `json:"state" validate:"max=50"`
	Stage               string           `json:"stage"`
	EstimatedValue      *decimal.Decimal `json:"estimated_value"`
	AppointmentDatetime string           `json:"appointment_datetime" validate:"max=60"`
}

type LeadDetailOutput struct {
	*entity.Lead
	Notes []*entity.Note `json:"notes"`
}

type NoteInput struct {
	NoteText string `json:"note_text" validate:"required"`
}

type SendNotificationInput struct {
	Channel string  `json:"channel" validate:"required,oneof=email sms"`
	ToValue string  `json:"to_value" validate:"required,max=200"`
	Subject string  `json:"subject" validate:"max=200"`
	Message string  `json:"message" validate:"required"`
	LeadID  *string `json:"lead_id"`
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email,max=160"`
	Password string `json:"password" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserOutput struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type LoginOutput struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresAt   time.Time  `json:"expires_at"`
	User        UserOutput `json:"user"`
}
