package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/guildledger/internal/adapter/http/handler"
	"github.com/iho/guildledger/internal/adapter/http/middleware"
	"github.com/iho/guildledger/internal/infrastructure/metrics"
	"github.com/iho/guildledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	DistributionHandler *handler.DistributionHandler
	LootHandler         *handler.LootHandler
	BalanceHandler      *handler.BalanceHandler
	HealthHandler       *handler.HealthHandler
	IdempotencyStore    usecase.IdempotencyStore
	IdempotencyTTL      time.Duration
	RateLimiter         *middleware.RateLimiter
	Metrics             *metrics.Metrics
	// MetricsHandler serves /metrics; promhttp.Handler() when nil.
	MetricsHandler http.Handler
	Logger         zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.NewHTTPMetrics(cfg.Metrics).Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Actor)
		r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		r.Route("/guilds/{guildID}", func(r chi.Router) {
			r.Get("/balance", cfg.BalanceHandler.Get)

			// Distributions
			r.Route("/distributions", func(r chi.Router) {
				r.Post("/", cfg.DistributionHandler.Create)
				r.Get("/", cfg.DistributionHandler.List)
				r.Get("/{batchID}", cfg.DistributionHandler.Get)
			})

			// Loot
			r.Route("/loot/{lootID}", func(r chi.Router) {
				r.Post("/distribute", cfg.LootHandler.Distribute)
				r.Get("/distribution", cfg.LootHandler.Get)
			})
		})
	})

	return r
}
