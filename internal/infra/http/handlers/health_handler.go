package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/xavierca1/contractorconnect/internal/entity"
)

const Version = "1.0.0"

type Pinger interface {
	PingContext(ctx context.Context) error
}

// ConnectionChecker reports whether the event feed connection dropped.
type ConnectionChecker interface {
	IsClosed() bool
}

type ChannelLister interface {
	Channels() []entity.Channel
}

type HealthHandler struct {
	DB        Pinger
	Events    ConnectionChecker
	Delivery  ChannelLister
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(db Pinger, events ConnectionChecker, delivery ChannelLister) *HealthHandler {
	return &HealthHandler{
		DB:        db,
		Events:    events,
		Delivery:  delivery,
		StartTime: time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string)

	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		err := h.DB.PingContext(ctx)
		cancel()
		if err != nil {
			deps["database"] = fmt.Sprintf("unhealthy: %v", err)
		} else {
			deps["database"] = "healthy"
		}
	} else {
		deps["database"] = "not configured"
	}

	if h.Events != nil {
		if h.Events.IsClosed() {
			deps["rabbitmq"] = "unhealthy: connection closed"
		} else {
			deps["rabbitmq"] = "healthy"
		}
	} else {
		deps["rabbitmq"] = "not configured"
	}

	deps["email"] = "not configured"
	deps["sms"] = "not configured"
	if h.Delivery != nil {
		for _, ch := range h.Delivery.Channels() {
			deps[string(ch)] = "configured"
		}
	}

	status := "healthy"
	for _, v := range deps {
		if v != "healthy" && v != "configured" && v != "not configured" {
			status = "degraded"
			break
		}
	}

	response := HealthResponse{
		Status:       status,
		Version:      Version,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	}

	w.Header().Set("Content-Type", "application/json")
	if status == "degraded" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(response)
}
