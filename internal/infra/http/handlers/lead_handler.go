package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/contractorconnect/internal/entity"
	"github.com/xavierca1/contractorconnect/internal/infra/http/middleware"
	"github.com/xavierca1/contractorconnect/internal/usecase"
)

type LeadService interface {
	Create(ctx context.Context, id entity.Identity, input usecase.LeadInput) (*entity.Lead, error)
	List(ctx context.Context, id entity.Identity, stage string) ([]*entity.Lead, error)
	Get(ctx context.Context, id entity.Identity, leadID string) (*usecase.LeadDetailOutput, error)
	Update(ctx context.Context, id entity.Identity, leadID string, input usecase.LeadInput) (*entity.Lead, error)
	Delete(ctx context.Context, id entity.Identity, leadID string) error
	AddNote(ctx context.Context, id entity.Identity, leadID string, input usecase.NoteInput) (*entity.Note, error)
}

type LeadHandler struct {
	Leads  LeadService
	Logger *zap.Logger
}

func NewLeadHandler(leads LeadService, logger *zap.Logger) *LeadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadHandler{Leads: leads, Logger: logger}
}

// List handles GET /api/leads?stage=
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := h.Leads.List(r.Context(), middleware.IdentityFrom(r.Context()), r.URL.Query().Get("stage"))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.LeadInput
	if !decodeJSON(w, r, &input) {
		return
	}
	lead, err := h.Leads.Create(r.Context(), middleware.IdentityFrom(r.Context()), input)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	out, err := h.Leads.Get(r.Context(), middleware.IdentityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Update handles PUT /api/leads/{id}. A change into Booked sends the
// automatic notification before the response is written.
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input usecase.LeadInput
	if !decodeJSON(w, r, &input) {
		return
	}
	lead, err := h.Leads.Update(r.Context(), middleware.IdentityFrom(r.Context()), chi.URLParam(r, "id"), input)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Leads.Delete(r.Context(), middleware.IdentityFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LeadHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	var input usecase.NoteInput
	if !decodeJSON(w, r, &input) {
		return
	}
	note, err := h.Leads.AddNote(r.Context(), middleware.IdentityFrom(r.Context()), chi.URLParam(r, "id"), input)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}
