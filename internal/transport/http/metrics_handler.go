package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MetricsHandler serves the Prometheus exposition of the service's registry
type MetricsHandler struct {
	exposition http.Handler
}

// NewMetricsHandler wraps the exposition handler, usually TelemetryProviders.MetricsHandler()
func NewMetricsHandler(exposition http.Handler) *MetricsHandler {
	return &MetricsHandler{exposition: exposition}
}

// Routes sets up the metrics routes
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetMetrics)
	return r
}

// GetMetrics handles GET /metrics
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if h.exposition == nil {
		http.Error(w, "metrics are not enabled", http.StatusServiceUnavailable)
		return
	}
	h.exposition.ServeHTTP(w, r)
}
