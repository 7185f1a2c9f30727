package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/careconnect/scheduler/internal/api/router"
	"github.com/careconnect/scheduler/internal/appointments"
	"github.com/careconnect/scheduler/internal/booking"
	appconfig "github.com/careconnect/scheduler/internal/config"
	"github.com/careconnect/scheduler/internal/http/handlers"
	"github.com/careconnect/scheduler/internal/notify"
	"github.com/careconnect/scheduler/internal/observability/metrics"
	"github.com/careconnect/scheduler/internal/scheduling"
	"github.com/careconnect/scheduler/internal/users"
	"github.com/careconnect/scheduler/pkg/logging"
)

func main() {
	// Load .env in development; ignored when absent.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting careconnect scheduler API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Storage: Postgres in production, in-memory for local development.
	var (
		store     appointments.Store
		directory users.Directory
	)
	if cfg.UseMemoryStore || cfg.DatabaseURL == "" {
		logger.Warn("using in-memory store, data will not survive restarts")
		store = appointments.NewMemoryStore()
		directory = users.NewMemoryDirectory()
	} else {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		store = appointments.NewPostgresStore(pool)
		directory = users.NewPostgresDirectory(pool)
	}

	// Email sender selection.
	sender := buildEmailSender(ctx, cfg, logger)
	mailer := notify.NewMailer(cfg.DashboardURL)
	dispatcher := notify.NewDispatcher(mailer, sender, notify.DispatcherConfig{
		Workers:   cfg.NotifyWorkerCount,
		QueueSize: cfg.NotifyQueueSize,
	}, logger)
	defer dispatcher.Close()

	bookingMetrics := metrics.NewBookingMetrics(nil)
	allocator := scheduling.NewAllocator(logger)
	bookingService := booking.NewService(store, directory, allocator, dispatcher, bookingMetrics, logger)
	appointmentsHandler := handlers.NewAppointmentsHandler(bookingService, store, logger)

	// Optional Redis duplicate-submission guard.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient = redis.NewClient(opts)
	}

	r := router.New(&router.Config{
		Logger:              logger,
		AppointmentsHandler: appointmentsHandler,
		MetricsHandler:      promhttp.Handler(),
		AuthSecret:          cfg.AuthJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerSecond:  cfg.RateLimitPerSecond,
		RateLimitBurst:      cfg.RateLimitBurst,
		RedisClient:         redisClient,
		IdempotencyTTL:      cfg.IdempotencyTTL,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func buildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Error("failed to load AWS config, falling back to stub email sender", "error", err)
			return notify.NewStubEmailSender(logger)
		}
		client := sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
			if cfg.AWSEndpointOverride != "" {
				o.BaseEndpoint = &cfg.AWSEndpointOverride
			}
		})
		if sender := notify.NewSESSender(client, notify.SESConfig{
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger); sender != nil {
			return sender
		}
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger); sender != nil {
			return sender
		}
		logger.Warn("sendgrid selected but not configured, falling back to stub email sender")
	}
	return notify.NewStubEmailSender(logger)
}
