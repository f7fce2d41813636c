package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/contractorconnect/internal/entity"
	"github.com/xavierca1/contractorconnect/internal/infra/http/middleware"
	"github.com/xavierca1/contractorconnect/internal/usecase"
)

type NotificationService interface {
	SendExplicit(ctx context.Context, id entity.Identity, input usecase.SendNotificationInput) (*entity.Notification, error)
	List(ctx context.Context, id entity.Identity) ([]*entity.Notification, error)
}

type NotificationHandler struct {
	Notifications NotificationService
	Logger        *zap.Logger
}

func NewNotificationHandler(svc NotificationService, logger *zap.Logger) *NotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationHandler{Notifications: svc, Logger: logger}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.Notifications.List(r.Context(), middleware.IdentityFrom(r.Context()))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Send handles POST /api/notifications/send. A provider failure still
// answers 201: the stored record carries status "failed".
func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var input usecase.SendNotificationInput
	if !decodeJSON(w, r, &input) {
		return
	}
	n, err := h.Notifications.SendExplicit(r.Context(), middleware.IdentityFrom(r.Context()), input)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}
