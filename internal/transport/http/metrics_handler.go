package http

import (
	"net/http"

	"prfcli/internal/infrastructure"
	"prfcli/internal/middleware"
)

// MetricsHandler exposes the Prometheus registry in text exposition format
type MetricsHandler struct {
	metrics *infrastructure.Metrics
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(metrics *infrastructure.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.metrics == nil {
		middleware.WriteProblem(w, middleware.ProblemFromStatus(http.StatusServiceUnavailable,
			"metrics are disabled", middleware.GetRequestID(r.Context())))
		return
	}
	h.metrics.Handler().ServeHTTP(w, r)
}
