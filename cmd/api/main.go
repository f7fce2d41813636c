package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xavierca1/contractorconnect/internal/infra/auth"
	"github.com/xavierca1/contractorconnect/internal/infra/config"
	"github.com/xavierca1/contractorconnect/internal/infra/database"
	"github.com/xavierca1/contractorconnect/internal/infra/delivery"
	"github.com/xavierca1/contractorconnect/internal/infra/http/handlers"
	"github.com/xavierca1/contractorconnect/internal/infra/http/middleware"
	"github.com/xavierca1/contractorconnect/internal/infra/integration/twilio"
	"github.com/xavierca1/contractorconnect/internal/infra/logger"
	"github.com/xavierca1/contractorconnect/internal/infra/mail"
	"github.com/xavierca1/contractorconnect/internal/infra/queue"
	"github.com/xavierca1/contractorconnect/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	decimal.MarshalJSONWithoutQuotes = true

	db, err := database.NewDBConnection(cfg.Database.URL)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		zlog.Fatal("failed to apply schema", zap.Error(err))
	}

	// Repositories
	leadRepo := database.NewLeadRepository(db)
	noteRepo := database.NewNoteRepository(db)
	notificationRepo := database.NewNotificationRepository(db)
	userRepo := database.NewUserRepository(db)

	// Delivery providers
	mailSender := mail.NewEmailSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
	smsClient := twilio.NewClient(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber, cfg.Twilio.BaseURL)
	deliveryRouter := delivery.NewRouter(mailSender, smsClient)
	zlog.Info("delivery channels",
		zap.Bool("email", mailSender.Configured()),
		zap.Bool("sms", smsClient.Configured()),
	)

	// Stage change feed. Without RABBITMQ_URL events are dropped.
	var (
		producer queue.QueueProducerInterface = queue.NoopProducer{}
		events   handlers.ConnectionChecker
	)
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL)
		if err != nil {
			zlog.Fatal("failed to connect to rabbitmq", zap.Error(err))
		}
		defer rabbitMQ.Close()
		producer = queue.NewProducer(rabbitMQ.Ch)
		events = rabbitMQ
	}

	// Auth
	tokens, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.Issuer)
	if err != nil {
		zlog.Fatal("failed to configure tokens", zap.Error(err))
	}
	hasher := auth.NewBcryptHasher(0)

	// Use cases
	metrics := middleware.Recorder{}
	notificationUC := usecase.NewNotificationUseCase(
		notificationRepo,
		leadRepo,
		deliveryRouter,
		cfg.Delivery.Timeout,
		cfg.Delivery.Location,
		metrics,
		zlog.Named("notifications"),
	)
	leadUC := usecase.NewLeadUseCase(leadRepo, noteRepo, notificationUC, producer, metrics, zlog.Named("leads"))
	dashboardUC := usecase.NewDashboardUseCase(leadRepo, cfg.Delivery.Location)
	authUC := usecase.NewAuthUseCase(userRepo, hasher, tokens, zlog.Named("auth"))

	authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimit, time.Minute)
	defer authLimiter.Stop()

	router := newRouter(routes{
		Health:        handlers.NewHealthHandler(db, events, deliveryRouter),
		Auth:          handlers.NewAuthHandler(authUC, zlog),
		Leads:         handlers.NewLeadHandler(leadUC, zlog),
		Notifications: handlers.NewNotificationHandler(notificationUC, zlog),
		Dashboard:     handlers.NewDashboardHandler(dashboardUC, zlog),
		Authenticator: authUC,
		AuthLimiter:   authLimiter,
		CORSOrigins:   cfg.HTTP.CORSAllowedOrigins,
		TrustProxy:    cfg.HTTP.TrustProxyHeaders,
		Logger:        zlog,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Delivery.Timeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		zlog.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}
