package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/contractorconnect/internal/entity"
	"github.com/xavierca1/contractorconnect/internal/infra/http/handlers"
	"github.com/xavierca1/contractorconnect/internal/infra/http/middleware"
	"github.com/xavierca1/contractorconnect/internal/usecase"
)

var caller = entity.Identity{UserID: "user-1", Email: "dana@example.com"}

// MockLeadService
type MockLeadService struct {
	mock.Mock
}

func (m *MockLeadService) Create(ctx context.Context, id entity.Identity, input usecase.LeadInput) (*entity.Lead, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadService) List(ctx context.Context, id entity.Identity, stage string) ([]*entity.Lead, error) {
	args := m.Called(ctx, id, stage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadService) Get(ctx context.Context, id entity.Identity, leadID string) (*usecase.LeadDetailOutput, error) {
	args := m.Called(ctx, id, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.LeadDetailOutput), args.Error(1)
}

func (m *MockLeadService) Update(ctx context.Context, id entity.Identity, leadID string, input usecase.LeadInput) (*entity.Lead, error) {
	args := m.Called(ctx, id, leadID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadService) Delete(ctx context.Context, id entity.Identity, leadID string) error {
	args := m.Called(ctx, id, leadID)
	return args.Error(0)
}

func (m *MockLeadService) AddNote(ctx context.Context, id entity.Identity, leadID string, input usecase.NoteInput) (*entity.Note, error) {
	args := m.Called(ctx, id, leadID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Note), args.Error(1)
}

// MockNotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) SendExplicit(ctx context.Context, id entity.Identity, input usecase.SendNotificationInput) (*entity.Notification, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Notification), args.Error(1)
}

func (m *MockNotificationService) List(ctx context.Context, id entity.Identity) ([]*entity.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Notification), args.Error(1)
}

// MockDashboardService
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Execute(ctx context.Context, id entity.Identity) (*usecase.DashboardOutput, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.DashboardOutput), args.Error(1)
}

// MockAuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, input usecase.RegisterInput) (*usecase.UserOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.UserOutput), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.LoginOutput), args.Error(1)
}

// newRequest builds an authenticated request with chi URL params set.
func newRequest(method, target string, body any, params map[string]string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = middleware.WithIdentity(ctx, caller)
	return req.WithContext(ctx)
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) handlers.ErrorResponse {
	t.Helper()
	var out handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestLeadHandler_Create(t *testing.T) {
	svc := new(MockLeadService)
	lead := &entity.Lead{ID: "lead-1", FullName: "Dana Reyes", Stage: entity.StageNew}
	svc.On("Create", mock.Anything, caller, mock.MatchedBy(func(in usecase.LeadInput) bool {
		return in.FullName == "Dana Reyes" && in.Stage == "Contacted"
	})).Return(lead, nil)
	h := handlers.NewLeadHandler(svc, nil)

	rr := httptest.NewRecorder()
	h.Create(rr, newRequest(http.MethodPost, "/api/leads", map[string]any{
		"full_name": "Dana Reyes",
		"stage":     "Contacted",
	}, nil))

	assert.Equal(t, http.StatusCreated, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "lead-1", body["id"])
	assert.Equal(t, "New", body["stage"])
	assert.NotContains(t, body, "owner_id")
}

func TestLeadHandler_CreateInvalidJSON(t *testing.T) {
	svc := new(MockLeadService)
	h := handlers.NewLeadHandler(svc, nil)
	req := newRequest(http.MethodPost, "/api/leads", nil, nil)
	req.Body = http.NoBody

	rr := httptest.NewRecorder()
	h.Create(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_JSON", decodeError(t, rr).Error)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestLeadHandler_CreateValidationError(t *testing.T) {
	svc := new(MockLeadService)
	svc.On("Create", mock.Anything, caller, mock.Anything).
		Return(nil, usecase.ValidationErrors{{Field: "full_name", Message: "is required"}})
	h := handlers.NewLeadHandler(svc, nil)

	rr := httptest.NewRecorder()
	h.Create(rr, newRequest(http.MethodPost, "/api/leads", map[string]any{"phone": "+1555"}, nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	out := decodeError(t, rr)
	assert.Equal(t, "VALIDATION_ERROR", out.Error)
	require.Len(t, out.Fields, 1)
	assert.Equal(t, "full_name", out.Fields[0].Field)
}

func TestLeadHandler_ListPassesStageFilter(t *testing.T) {
	svc := new(MockLeadService)
	svc.On("List", mock.Anything, caller, "Booked").Return([]*entity.Lead{}, nil)
	h := handlers.NewLeadHandler(svc, nil)

	rr := httptest.NewRecorder()
	h.List(rr, newRequest(http.MethodGet, "/api/leads?stage=Booked", nil, nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
	svc.AssertExpectations(t)
}

func TestLeadHandler_GetNotFound(t *testing.T) {
	svc := new(MockLeadService)
	svc.On("Get", mock.Anything, caller, "other-owners-lead").Return(nil, &usecase.NotFoundError{Resource: "lead"})
	h := handlers.NewLeadHandler(svc, nil)

	rr := httptest.NewRecorder()
	h.Get(rr, newRequest(http.MethodGet, "/api/leads/other-owners-lead", nil, map[string]string{"id": "other-owners-lead"}))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rr).Error)
}

func TestLeadHandler_GetEmbedsNotes(t *testing.T) {
	svc := new(MockLeadService)
	svc.On("Get", mock.Anything, caller, "lead-1").Return(&usecase.LeadDetailOutput{
		Lead:  &entity.Lead{ID: "lead-1", FullName: "Dana", Stage: entity.StageBooked},
		Notes: []*entity.Note{{ID: "note-1", LeadID: "lead-1", NoteText: "called"}},
	}, nil)
	h := handlers.NewLeadHandler(svc, nil)

	rr := httptest.NewRecorder()
	h.Get(rr, newRequest(http.MethodGet, "/api/leads/lead-1", nil, map[string]string{"id": "lead-1"}))

	assert.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		ID    string `json:"id"`
		Stage string `json:"stage"`
		Notes []struct {
			NoteText string `json:"note_text"`
		} `json:"notes"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "lead-1", body.ID)
	assert.Equal(t, "Booked", body.Stage)
	require.Len(t, body.Notes, 1)
	assert.Equal(t, "called", body.Notes[0].NoteText)
}

func TestLeadHandler_Update(t *testing.T) {
	svc := new(MockLeadService)
	svc.On("Update", mock.Anything, caller, "lead-1", mock.MatchedBy(func(in usecase.LeadInput) bool {
		return in.Stage == "Booked"
	})).Return(&entity.Lead{ID: "lead-1", FullName: "Dana", Stage: entity.StageBooked}, nil)
	h := handlers.NewLeadHandler(svc, nil)

	rr := httptest.NewRecorder()
	h.Update(rr, newRequest(http.MethodPut, "/api/leads/lead-1",
		map[string]any{"full_name": "Dana", "stage": "Booked"}, map[string]string{"id": "lead-1"}))

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestLeadHandler_Delete(t *testing.T) {
	svc := new(MockLeadService)
	svc.On("Delete", mock.Anything, caller, "lead-1").Return(nil)
	svc.On("Delete", mock.Anything, caller, "missing").Return(&usecase.NotFoundError{Resource: "lead"})
	h := handlers.NewLeadHandler(svc, nil)

	rr := httptest.NewRecorder()
	h.Delete(rr, newRequest(http.MethodDelete, "/api/leads/lead-1", nil, map[string]string{"id": "lead-1"}))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	rr = httptest.NewRecorder()
	h.Delete(rr, newRequest(http.MethodDelete, "/api/leads/missing", nil, map[string]string{"id": "missing"}))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestLeadHandler_AddNote(t *testing.T) {
	svc := new(MockLeadService)
	svc.On("AddNote", mock.Anything, caller, "lead-1", usecase.NoteInput{NoteText: "left voicemail"}).
		Return(&entity.Note{ID: "note-1", LeadID: "lead-1", NoteText: "left voicemail"}, nil)
	h := handlers.NewLeadHandler(svc, nil)

	rr := httptest.NewRecorder()
	h.AddNote(rr, newRequest(http.MethodPost, "/api/leads/lead-1/notes",
		map[string]string{"note_text": "left voicemail"}, map[string]string{"id": "lead-1"}))

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"note_text":"left voicemail"`)
}

func TestLeadHandler_TechnicalErrorIsHidden(t *testing.T) {
	svc := new(MockLeadService)
	svc.On("List", mock.Anything, caller, "").Return(nil, &usecase.TechnicalError{
		Code: "DATABASE_ERROR", Message: "failed to list leads", Err: errors.New("pq: password authentication failed"),
	})
	h := handlers.NewLeadHandler(svc, nil)

	rr := httptest.NewRecorder()
	h.List(rr, newRequest(http.MethodGet, "/api/leads", nil, nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "password authentication")
	assert.Equal(t, "DATABASE_ERROR", decodeError(t, rr).Error)
}

func TestNotificationHandler_SendFailedDeliveryIsCreated(t *testing.T) {
	svc := new(MockNotificationService)
	subject := "Quote"
	n := &entity.Notification{
		ID:               "n-1",
		Channel:          entity.ChannelEmail,
		ToValue:          "dana@example.com",
		Subject:          &subject,
		Message:          "Quote attached",
		Status:           entity.StatusFailed,
		ProviderResponse: "email delivery failed: timeout",
		CreatedAt:        time.Now(),
	}
	svc.On("SendExplicit", mock.Anything, caller, mock.MatchedBy(func(in usecase.SendNotificationInput) bool {
		return in.Channel == "email" && in.ToValue == "dana@example.com" && in.LeadID == nil
	})).Return(n, nil)
	h := handlers.NewNotificationHandler(svc, nil)

	rr := httptest.NewRecorder()
	h.Send(rr, newRequest(http.MethodPost, "/api/notifications/send", map[string]any{
		"channel":  "email",
		"to_value": "dana@example.com",
		"subject":  "Quote",
		"message":  "Quote attached",
	}, nil))

	assert.Equal(t, http.StatusCreated, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "failed", body["status"])
	assert.Nil(t, body["lead_id"])
}

func TestNotificationHandler_List(t *testing.T) {
	svc := new(MockNotificationService)
	svc.On("List", mock.Anything, caller).Return([]*entity.Notification{{ID: "n-2"}, {ID: "n-1"}}, nil)
	h := handlers.NewNotificationHandler(svc, nil)

	rr := httptest.NewRecorder()
	h.List(rr, newRequest(http.MethodGet, "/api/notifications", nil, nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var body []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "n-2", body[0]["id"])
}

func TestDashboardHandler_Get(t *testing.T) {
	svc := new(MockDashboardService)
	out := usecase.Aggregate(nil, time.Now(), time.UTC, usecase.DefaultUpcomingLimit)
	svc.On("Execute", mock.Anything, caller).Return(out, nil)
	h := handlers.NewDashboardHandler(svc, nil)

	rr := httptest.NewRecorder()
	h.Get(rr, newRequest(http.MethodGet, "/api/dashboard", nil, nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `"total_leads":0`)
	assert.Contains(t, body, `"by_stage":{"New":0,"Contacted":0,"Booked":0,"Estimate Sent":0,"Closed Won":0,"Closed Lost":0}`)
	assert.Contains(t, body, `"upcoming":[]`)
}

func TestAuthHandler_Register(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Register", mock.Anything, usecase.RegisterInput{Name: "Dana", Email: "dana@example.com", Password: "pw"}).
		Return(&usecase.UserOutput{ID: "user-1", Name: "Dana", Email: "dana@example.com"}, nil)
	svc.On("Register", mock.Anything, mock.Anything).
		Return(nil, &usecase.DomainError{Code: "EMAIL_IN_USE", Message: "email already in use"})
	h := handlers.NewAuthHandler(svc, nil)

	rr := httptest.NewRecorder()
	h.Register(rr, newRequest(http.MethodPost, "/api/auth/register",
		map[string]string{"name": "Dana", "email": "dana@example.com", "password": "pw"}, nil))
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.NotContains(t, rr.Body.String(), "password")

	rr = httptest.NewRecorder()
	h.Register(rr, newRequest(http.MethodPost, "/api/auth/register",
		map[string]string{"name": "Dana", "email": "taken@example.com", "password": "pw"}, nil))
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "EMAIL_IN_USE", decodeError(t, rr).Error)
}

func TestAuthHandler_Login(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Login", mock.Anything, usecase.LoginInput{Email: "dana@example.com", Password: "pw"}).
		Return(&usecase.LoginOutput{AccessToken: "tok", TokenType: "Bearer", User: usecase.UserOutput{ID: "user-1"}}, nil)
	svc.On("Login", mock.Anything, mock.Anything).Return(nil, &usecase.AuthError{Reason: "invalid credentials"})
	h := handlers.NewAuthHandler(svc, nil)

	rr := httptest.NewRecorder()
	h.Login(rr, newRequest(http.MethodPost, "/api/auth/login", map[string]string{"email": "dana@example.com", "password": "pw"}, nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"access_token":"tok"`)

	rr = httptest.NewRecorder()
	h.Login(rr, newRequest(http.MethodPost, "/api/auth/login", map[string]string{"email": "dana@example.com", "password": "nope"}, nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "invalid credentials", decodeError(t, rr).Message)
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

type fakeConn struct{ closed bool }

func (f fakeConn) IsClosed() bool { return f.closed }

type fakeChannels []entity.Channel

func (f fakeChannels) Channels() []entity.Channel { return f }

func TestHealthHandler(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		h := handlers.NewHealthHandler(fakePinger{}, fakeConn{}, fakeChannels{entity.ChannelEmail})

		rr := httptest.NewRecorder()
		h.Handle(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		var body handlers.HealthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "configured", body.Dependencies["email"])
		assert.Equal(t, "not configured", body.Dependencies["sms"])
	})

	t.Run("database down", func(t *testing.T) {
		h := handlers.NewHealthHandler(fakePinger{err: errors.New("connection refused")}, nil, nil)

		rr := httptest.NewRecorder()
		h.Handle(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Contains(t, rr.Body.String(), "connection refused")
	})
}
