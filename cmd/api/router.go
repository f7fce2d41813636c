package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xavierca1/contractorconnect/internal/infra/http/handlers"
	"github.com/xavierca1/contractorconnect/internal/infra/http/middleware"
)

type routes struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Leads         *handlers.LeadHandler
	Notifications *handlers.NotificationHandler
	Dashboard     *handlers.DashboardHandler

	Authenticator middleware.Authenticator
	AuthLimiter   *middleware.RateLimiter
	CORSOrigins   []string
	TrustProxy    bool
	Logger        *zap.Logger
}

func newRouter(rt routes) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if rt.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(rt.Logger))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/api/health", rt.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(middleware.RateLimit(rt.AuthLimiter))
		r.Post("/register", rt.Auth.Register)
		r.Post("/login", rt.Auth.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(rt.Authenticator))

		r.Get("/api/dashboard", rt.Dashboard.Get)

		r.Route("/api/leads", func(r chi.Router) {
			r.Get("/", rt.Leads.List)
			r.Post("/", rt.Leads.Create)
			r.Get("/{id}", rt.Leads.Get)
			r.Put("/{id}", rt.Leads.Update)
			r.Delete("/{id}", rt.Leads.Delete)
			r.Post("/{id}/notes", rt.Leads.AddNote)
		})

		r.Get("/api/notifications", rt.Notifications.List)
		r.Post("/api/notifications/send", rt.Notifications.Send)
	})

	return r
}
