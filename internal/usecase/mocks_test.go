package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/contractorconnect/internal/entity"
	"github.com/xavierca1/contractorconnect/internal/infra/queue"
	"github.com/xavierca1/contractorconnect/internal/usecase"
)

// memLeadRepository is an owner-scoped in-memory lead store.
type memLeadRepository struct {
	mu    sync.Mutex
	leads map[string]*entity.Lead
	notes *memNoteRepository
}

func newMemLeadRepository(notes *memNoteRepository) *memLeadRepository {
	return &memLeadRepository{leads: map[string]*entity.Lead{}, notes: notes}
}

func (r *memLeadRepository) Create(_ context.Context, lead *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := lead.Snapshot()
	r.leads[lead.ID] = &cp
	return nil
}

func (r *memLeadRepository) List(_ context.Context, ownerID string, filter entity.LeadFilter) ([]*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Lead
	for _, l := range r.leads {
		if l.OwnerID != ownerID {
			continue
		}
		if filter.Stage != 0 && l.Stage != filter.Stage {
			continue
		}
		cp := l.Snapshot()
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memLeadRepository) FindByID(_ context.Context, ownerID, id string) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok || l.OwnerID != ownerID {
		return nil, entity.ErrLeadNotFound
	}
	cp := l.Snapshot()
	return &cp, nil
}

func (r *memLeadRepository) UpdateInTx(_ context.Context, ownerID, id string, mutate func(*entity.Lead) error) (*entity.Lead, *entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok || l.OwnerID != ownerID {
		return nil, nil, entity.ErrLeadNotFound
	}
	before := l.Snapshot()
	after := l.Snapshot()
	if err := mutate(&after); err != nil {
		return nil, nil, err
	}
	stored := after.Snapshot()
	r.leads[id] = &stored
	return &before, &after, nil
}

func (r *memLeadRepository) Delete(_ context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok || l.OwnerID != ownerID {
		return entity.ErrLeadNotFound
	}
	delete(r.leads, id)
	if r.notes != nil {
		r.notes.deleteForLead(id)
	}
	return nil
}

type memNoteRepository struct {
	mu    sync.Mutex
	notes []*entity.Note
}

func (r *memNoteRepository) Create(_ context.Context, note *entity.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note)
	return nil
}

func (r *memNoteRepository) FindByLeadID(_ context.Context, ownerID, leadID string) ([]*entity.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Note
	for i := len(r.notes) - 1; i >= 0; i-- {
		n := r.notes[i]
		if n.OwnerID == ownerID && n.LeadID == leadID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memNoteRepository) deleteForLead(leadID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.notes[:0]
	for _, n := range r.notes {
		if n.LeadID != leadID {
			kept = append(kept, n)
		}
	}
	r.notes = kept
}

type memNotificationRepository struct {
	mu      sync.Mutex
	records []*entity.Notification
}

func (r *memNotificationRepository) Create(_ context.Context, n *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, n)
	return nil
}

func (r *memNotificationRepository) ListByOwner(_ context.Context, ownerID string, limit int) ([]*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Notification
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		if r.records[i].OwnerID == ownerID {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}

func (r *memNotificationRepository) all() []*entity.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entity.Notification(nil), r.records...)
}

// MockNotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*entity.Notification, error) {
	args := m.Called(ctx, ownerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Notification), args.Error(1)
}

// MockDeliverer
type MockDeliverer struct {
	mock.Mock
}

func (m *MockDeliverer) Deliver(ctx context.Context, msg usecase.DeliveryMessage) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

// blockingDeliverer waits for ctx to end, like a provider that never answers.
type blockingDeliverer struct{}

func (blockingDeliverer) Deliver(ctx context.Context, _ usecase.DeliveryMessage) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// MockQueueProducer
type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishStageChanged(ctx context.Context, payload queue.StageChangedPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// MockUserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *entity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

// MockPasswordHasher
type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Compare(hash, password string) bool {
	args := m.Called(hash, password)
	return args.Bool(0)
}

// MockTokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(user *entity.User) (string, time.Time, error) {
	args := m.Called(user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenIssuer) Validate(token string) (entity.Identity, error) {
	args := m.Called(token)
	return args.Get(0).(entity.Identity), args.Error(1)
}

type recordingMetrics struct {
	mu            sync.Mutex
	notifications []string
	transitions   []string
}

func (r *recordingMetrics) RecordNotification(channel, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, channel+":"+status)
}

func (r *recordingMetrics) RecordStageTransition(from, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, from+"->"+to)
}
