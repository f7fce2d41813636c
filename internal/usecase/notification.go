package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/contractorconnect/internal/entity"
)

const (
	DefaultDeliveryTimeout  = 10 * time.Second
	DefaultNotificationList = 100

	defaultSubject        = "ContractorConnect Notification"
	bookedSubject         = "Appointment booked"
	appointmentTimeLayout = "Mon Jan 2, 2006 at 3:04 PM"
	notConfiguredResponse = "no delivery provider configured; logged only"
	triggerAutomatic      = "automatic"
)

type NotificationUseCase struct {
	Repo      entity.NotificationRepositoryInterface
	Leads     entity.LeadRepositoryInterface
	Deliverer Deliverer
	Timeout   time.Duration
	Location  *time.Location
	Metrics   MetricsRecorder
	Logger    *zap.Logger
}

func NewNotificationUseCase(
	repo entity.NotificationRepositoryInterface,
	leads entity.LeadRepositoryInterface,
	deliverer Deliverer,
	timeout time.Duration,
	loc *time.Location,
	metrics MetricsRecorder,
	logger *zap.Logger,
) *NotificationUseCase {
	if timeout <= 0 {
		timeout = DefaultDeliveryTimeout
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationUseCase{
		Repo:      repo,
		Leads:     leads,
		Deliverer: deliverer,
		Timeout:   timeout,
		Location:  loc,
		Metrics:   metrics,
		Logger:    logger,
	}
}

// SendAutomatic contacts the lead after it was booked: e-mail when an address
// is on file, SMS otherwise. With neither it records nothing and returns
// (nil, nil).
func (uc *NotificationUseCase) SendAutomatic(ctx context.Context, id entity.Identity, lead *entity.Lead) (*entity.Notification, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}

	leadID := lead.ID
	when := uc.appointmentText(lead)

	var n *entity.Notification
	switch {
	case strings.Contains(lead.Email, "@"):
		subject := bookedSubject
		msg := fmt.Sprintf("Hi %s, your appointment has been booked%s. We'll follow up soon.", lead.FullName, when)
		n = entity.NewNotification(id.UserID, &leadID, entity.ChannelEmail, lead.Email, &subject, msg)
	case lead.Phone != "":
		msg := fmt.Sprintf("%s, your appointment is booked%s. Reply if you need to reschedule.", lead.FullName, when)
		n = entity.NewNotification(id.UserID, &leadID, entity.ChannelSMS, lead.Phone, nil, msg)
	default:
		uc.Logger.Info("lead booked without contact details, skipping notification",
			zap.String("lead_id", lead.ID))
		return nil, nil
	}

	if err := uc.deliverAndLog(ctx, n); err != nil {
		return nil, err
	}
	uc.Logger.Info("automatic notification recorded",
		zap.String("trigger", triggerAutomatic),
		zap.String("lead_id", lead.ID),
		zap.String("channel", string(n.Channel)),
		zap.String("status", string(n.Status)))
	return n, nil
}

// appointmentText renders " for <when>", or "" without an appointment.
func (uc *NotificationUseCase) appointmentText(lead *entity.Lead) string {
	if lead.AppointmentDatetime == "" {
		return ""
	}
	if at, ok := lead.AppointmentAt(uc.Location); ok {
		return " for " + at.In(uc.Location).Format(appointmentTimeLayout)
	}
	return " for " + lead.AppointmentDatetime
}

// SendExplicit delivers a user-composed message and records the attempt.
func (uc *NotificationUseCase) SendExplicit(ctx context.Context, id entity.Identity, input SendNotificationInput) (*entity.Notification, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}

	input.Channel = strings.ToLower(strings.TrimSpace(input.Channel))
	input.ToValue = strings.TrimSpace(input.ToValue)
	input.Subject = strings.TrimSpace(input.Subject)
	input.Message = strings.TrimSpace(input.Message)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	channel, err := entity.ParseChannel(input.Channel)
	if err != nil {
		return nil, invalid("channel", "must be one of: email sms")
	}

	var leadID *string
	if input.LeadID != nil && strings.TrimSpace(*input.LeadID) != "" {
		ref := strings.TrimSpace(*input.LeadID)
		if !wellFormedID(ref) {
			return nil, errLeadNotFound
		}
		if _, err := uc.Leads.FindByID(ctx, id.UserID, ref); err != nil {
			if errors.Is(err, entity.ErrLeadNotFound) {
				return nil, &NotFoundError{Resource: "lead"}
			}
			return nil, storageError("failed to load lead", err)
		}
		leadID = &ref
	}

	var subject *string
	if input.Subject != "" {
		subject = &input.Subject
	}

	n := entity.NewNotification(id.UserID, leadID, channel, input.ToValue, subject, input.Message)
	if err := uc.deliverAndLog(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// deliverAndLog makes exactly one delivery attempt and persists the outcome.
// Provider failures become a failed record; only storage errors are returned.
func (uc *NotificationUseCase) deliverAndLog(ctx context.Context, n *entity.Notification) error {
	if uc.Deliverer == nil {
		n.Status = entity.StatusLogged
		n.ProviderResponse = notConfiguredResponse
	} else {
		subject := defaultSubject
		if n.Subject != nil {
			subject = *n.Subject
		}
		sendCtx, cancel := context.WithTimeout(ctx, uc.Timeout)
		resp, err := uc.Deliverer.Deliver(sendCtx, DeliveryMessage{
			Channel: n.Channel,
			To:      n.ToValue,
			Subject: subject,
			Body:    n.Message,
		})
		cancel()

		switch {
		case err == nil:
			n.Status = entity.StatusSent
			n.ProviderResponse = resp
		case errors.Is(err, ErrDeliveryNotConfigured):
			n.Status = entity.StatusLogged
			n.ProviderResponse = notConfiguredResponse
		default:
			derr := &DeliveryError{Channel: n.Channel, Err: err}
			n.Status = entity.StatusFailed
			n.ProviderResponse = derr.Error()
			uc.Logger.Warn("notification delivery failed",
				zap.String("notification_id", n.ID),
				zap.String("channel", string(n.Channel)),
				zap.Error(derr))
		}
	}

	// The record is written even if the request was cancelled meanwhile.
	if err := uc.Repo.Create(context.WithoutCancel(ctx), n); err != nil {
		return storageError("failed to record notification", err)
	}
	if uc.Metrics != nil {
		uc.Metrics.RecordNotification(string(n.Channel), string(n.Status))
	}
	return nil
}

// List returns the caller's most recent notifications, newest first.
func (uc *NotificationUseCase) List(ctx context.Context, id entity.Identity) ([]*entity.Notification, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	out, err := uc.Repo.ListByOwner(ctx, id.UserID, DefaultNotificationList)
	if err != nil {
		return nil, storageError("failed to list notifications", err)
	}
	if out == nil {
		out = []*entity.Notification{}
	}
	return out, nil
}
