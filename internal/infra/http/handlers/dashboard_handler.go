package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/contractorconnect/internal/entity"
	"github.com/xavierca1/contractorconnect/internal/infra/http/middleware"
	"github.com/xavierca1/contractorconnect/internal/usecase"
)

type DashboardService interface {
	Execute(ctx context.Context, id entity.Identity) (*usecase.DashboardOutput, error)
}

type DashboardHandler struct {
	Dashboard DashboardService
	Logger    *zap.Logger
}

func NewDashboardHandler(svc DashboardService, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{Dashboard: svc, Logger: logger}
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	out, err := h.Dashboard.Execute(r.Context(), middleware.IdentityFrom(r.Context()))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
