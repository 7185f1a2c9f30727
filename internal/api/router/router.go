package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/careconnect/scheduler/internal/http/handlers"
	httpmiddleware "github.com/careconnect/scheduler/internal/http/middleware"
	"github.com/careconnect/scheduler/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	AppointmentsHandler *handlers.AppointmentsHandler
	MetricsHandler      http.Handler
	AuthSecret          string
	CORSAllowedOrigins  []string
	RateLimitPerSecond  float64
	RateLimitBurst      int

	// Redis-backed duplicate-submission guard (optional)
	RedisClient    *redis.Client
	IdempotencyTTL time.Duration
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}

	// Public endpoints (health checks, metrics)
	r.Group(func(public chi.Router) {
		public.Get("/health", cfg.AppointmentsHandler.HealthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Authenticated API
	r.Route("/api", func(api chi.Router) {
		api.Use(httpmiddleware.Auth(cfg.AuthSecret))
		if cfg.RedisClient != nil {
			api.Use(httpmiddleware.Idempotency(cfg.RedisClient, cfg.IdempotencyTTL, cfg.Logger))
		}
		api.Post("/appointments", cfg.AppointmentsHandler.Create)
		api.Get("/appointments", cfg.AppointmentsHandler.List)
		api.Get("/notifications", cfg.AppointmentsHandler.ListNotifications)
	})

	return r
}
