package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"prfcli/internal/config"
	"prfcli/internal/infrastructure"
	"prfcli/internal/middleware"
	"prfcli/internal/services"
)

// RouterDeps groups what the dashboard router is built from
type RouterDeps struct {
	Dashboard DashboardServiceInterface
	Health    *services.HealthService
	Metrics   *infrastructure.Metrics
	Server    config.ServerConfig
	Logger    *slog.Logger
}

// NewRouter assembles the dashboard API.
// Middleware order: RequestID, RealIP, Observability, StructuredLogger, Recoverer,
// SecurityHeaders, RateLimiter.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StripSlashes)
	r.NotFound(middleware.NotFound)
	r.MethodNotAllowed(middleware.MethodNotAllowed)

	// Scrapes stay outside the instrumented group
	r.Handle("/metrics", NewMetricsHandler(deps.Metrics))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Observability(deps.Metrics))
		r.Use(middleware.StructuredLogger(logger))
		r.Use(middleware.Recoverer(logger))
		r.Use(middleware.SecurityHeaders)
		if deps.Server.RateLimitRPS > 0 {
			r.Use(middleware.NewRateLimiter(deps.Server.RateLimitRPS, deps.Server.RateLimitBurst, logger).Handler)
		}

		r.Get("/health", NewHealthHandler(deps.Health, logger).HealthCheck)
		r.Mount("/api", NewDashboardHandler(deps.Dashboard, logger).Routes())
	})
	return r
}
