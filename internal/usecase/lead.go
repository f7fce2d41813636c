package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xavierca1/contractorconnect/internal/entity"
	"github.com/xavierca1/contractorconnect/internal/infra/queue"
)

// LeadUseCase owns the lead lifecycle. Update is the only path that changes
// a stage, and it fires the automatic notification before returning.
type LeadUseCase struct {
	Leads    entity.LeadRepositoryInterface
	Notes    entity.NoteRepositoryInterface
	Notifier AutoNotifier
	Queue    QueueProducerInterface
	Metrics  MetricsRecorder
	Logger   *zap.Logger
}

func NewLeadUseCase(
	leads entity.LeadRepositoryInterface,
	notes entity.NoteRepositoryInterface,
	notifier AutoNotifier,
	producer QueueProducerInterface,
	metrics MetricsRecorder,
	logger *zap.Logger,
) *LeadUseCase {
	if producer == nil {
		producer = queue.NoopProducer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadUseCase{
		Leads:    leads,
		Notes:    notes,
		Notifier: notifier,
		Queue:    producer,
		Metrics:  metrics,
		Logger:   logger,
	}
}

// fields converts input to entity fields. An empty stage stays zero so that
// create defaults to New and update keeps the current stage.
func (in LeadInput) fields() (entity.LeadFields, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Stage = strings.TrimSpace(in.Stage)
	if err := validateStruct(in); err != nil {
		return entity.LeadFields{}, err
	}

	f := entity.LeadFields{
		FullName:            in.FullName,
		Phone:               in.Phone,
		Email:               in.Email,
		Address:             in.Address,
		City:                in.City,
		State:               in.State,
		EstimatedValue:      decimal.Zero,
		AppointmentDatetime: in.AppointmentDatetime,
	}
	if in.EstimatedValue != nil {
		f.EstimatedValue = *in.EstimatedValue
	}
	if in.Stage != "" {
		stage, err := entity.ParseStage(in.Stage)
		if err != nil {
			return entity.LeadFields{}, leadFieldError(err)
		}
		f.Stage = stage
	}
	return f, nil
}

// Create stores a new lead. A lead created directly in Booked is not
// notified: only a transition counts.
func (uc *LeadUseCase) Create(ctx context.Context, id entity.Identity, input LeadInput) (*entity.Lead, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	f, err := input.fields()
	if err != nil {
		return nil, err
	}
	lead, err := entity.NewLead(id.UserID, f)
	if err != nil {
		if verr := leadFieldError(err); verr != nil {
			return nil, verr
		}
		return nil, err
	}
	if err := uc.Leads.Create(ctx, lead); err != nil {
		return nil, storageError("failed to create lead", err)
	}
	return lead, nil
}

// List returns the caller's leads, optionally restricted to one stage.
func (uc *LeadUseCase) List(ctx context.Context, id entity.Identity, stage string) ([]*entity.Lead, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	var filter entity.LeadFilter
	if stage = strings.TrimSpace(stage); stage != "" {
		s, err := entity.ParseStage(stage)
		if err != nil {
			return nil, leadFieldError(err)
		}
		filter.Stage = s
	}
	leads, err := uc.Leads.List(ctx, id.UserID, filter)
	if err != nil {
		return nil, storageError("failed to list leads", err)
	}
	if leads == nil {
		leads = []*entity.Lead{}
	}
	return leads, nil
}

func (uc *LeadUseCase) find(ctx context.Context, id entity.Identity, leadID string) (*entity.Lead, error) {
	if !wellFormedID(leadID) {
		return nil, errLeadNotFound
	}
	lead, err := uc.Leads.FindByID(ctx, id.UserID, leadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, &NotFoundError{Resource: "lead"}
		}
		return nil, storageError("failed to load lead", err)
	}
	return lead, nil
}

// Get returns the lead with its notes, newest first.
func (uc *LeadUseCase) Get(ctx context.Context, id entity.Identity, leadID string) (*LeadDetailOutput, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	lead, err := uc.find(ctx, id, leadID)
	if err != nil {
		return nil, err
	}
	notes, err := uc.Notes.FindByLeadID(ctx, id.UserID, lead.ID)
	if err != nil {
		return nil, storageError("failed to load notes", err)
	}
	if notes == nil {
		notes = []*entity.Note{}
	}
	return &LeadDetailOutput{Lead: lead, Notes: notes}, nil
}

// Update replaces the lead's mutable fields. The previous state is read under
// the same row lock as the write, so concurrent updates cannot both observe
// the entry into Booked. Notification and event failures are logged and
// never fail the update.
func (uc *LeadUseCase) Update(ctx context.Context, id entity.Identity, leadID string, input LeadInput) (*entity.Lead, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if !wellFormedID(leadID) {
		return nil, errLeadNotFound
	}
	f, err := input.fields()
	if err != nil {
		return nil, err
	}

	before, after, err := uc.Leads.UpdateInTx(ctx, id.UserID, leadID, func(l *entity.Lead) error {
		return l.Apply(f)
	})
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, &NotFoundError{Resource: "lead"}
		}
		if verr := leadFieldError(err); verr != nil {
			return nil, verr
		}
		return nil, storageError("failed to update lead", err)
	}

	if before.Stage == after.Stage {
		return after, nil
	}

	log := uc.Logger.With(
		zap.String("lead_id", after.ID),
		zap.String("from", before.Stage.String()),
		zap.String("to", after.Stage.String()))
	if uc.Metrics != nil {
		uc.Metrics.RecordStageTransition(before.Stage.String(), after.Stage.String())
	}

	notified := false
	if ShouldNotify(before.Stage, after.Stage) && uc.Notifier != nil {
		n, err := uc.Notifier.SendAutomatic(ctx, id, after)
		switch {
		case err != nil:
			log.Error("automatic notification not recorded", zap.Error(err))
		case n != nil:
			notified = true
		}
	}

	event := queue.StageChangedPayload{
		OwnerID:    id.UserID,
		LeadID:     after.ID,
		From:       before.Stage.String(),
		To:         after.Stage.String(),
		Notified:   notified,
		OccurredAt: time.Now().UTC(),
	}
	if err := uc.Queue.PublishStageChanged(ctx, event); err != nil {
		log.Warn("stage change event not published", zap.Error(err))
	}

	log.Info("lead stage changed", zap.Bool("notified", notified))
	return after, nil
}

// Delete removes the lead and its notes. Notifications that reference it
// are kept.
func (uc *LeadUseCase) Delete(ctx context.Context, id entity.Identity, leadID string) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	if !wellFormedID(leadID) {
		return errLeadNotFound
	}
	if err := uc.Leads.Delete(ctx, id.UserID, leadID); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return &NotFoundError{Resource: "lead"}
		}
		return storageError("failed to delete lead", err)
	}
	return nil
}

// AddNote appends a note to one of the caller's leads.
func (uc *LeadUseCase) AddNote(ctx context.Context, id entity.Identity, leadID string, input NoteInput) (*entity.Note, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	input.NoteText = strings.TrimSpace(input.NoteText)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	lead, err := uc.find(ctx, id, leadID)
	if err != nil {
		return nil, err
	}
	note, err := entity.NewNote(id.UserID, lead.ID, input.NoteText)
	if err != nil {
		return nil, leadFieldError(err)
	}
	if err := uc.Notes.Create(ctx, note); err != nil {
		return nil, storageError("failed to create note", err)
	}
	return note, nil
}
