package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenrisk/internal/config"
	"tokenrisk/internal/infrastructure"
)

func newTelemetry(t *testing.T, exporter string, traceOut io.Writer) *infrastructure.TelemetryProviders {
	t.Helper()
	p, err := infrastructure.InitializeOTel(
		config.TelemetryConfig{ServiceName: "olrs-test", TraceExporter: exporter},
		"test",
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		infrastructure.WithTraceWriter(traceOut),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	return p
}

func TestOTelMiddleware_RouteMetrics(t *testing.T) {
	p := newTelemetry(t, "none", io.Discard)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(NewOTelMiddleware(p).Handler)
	r.Get("/api/v1/tokens/{symbol}", okHandler)

	for _, symbol := range []string{"SNEK", "HUNT"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tokens/"+symbol, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	families, err := p.Registry.Gather()
	require.NoError(t, err)
	series := -1
	for _, mf := range families {
		if mf.GetName() == "olrs_http_requests_total" {
			series = len(mf.GetMetric())
		}
	}
	assert.Equal(t, 1, series, "both requests share the route pattern series")

	body := httptest.NewRecorder()
	p.MetricsHandler().ServeHTTP(body, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, body.Body.String(),
		`olrs_http_requests_total{method="GET",route="/api/v1/tokens/{symbol}",status_code="200"} 2`)
}

func TestOTelMiddleware_TraceID(t *testing.T) {
	t.Run("noop tracer keeps request id", func(t *testing.T) {
		p := newTelemetry(t, "none", io.Discard)
		var traceID string
		h := RequestID(NewOTelMiddleware(p).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID = infrastructure.GetTraceID(r.Context())
		})))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, rec.Header().Get(RequestIDHeader), traceID)
	})

	t.Run("recording tracer uses span trace id", func(t *testing.T) {
		var spans bytes.Buffer
		p := newTelemetry(t, "stdout", &spans)
		var traceID string
		h := RequestID(NewOTelMiddleware(p).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID = infrastructure.GetTraceID(r.Context())
			w.WriteHeader(http.StatusInternalServerError)
		})))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

		assert.Len(t, traceID, 32)
		assert.NotEqual(t, rec.Header().Get(RequestIDHeader), traceID)

		require.NoError(t, p.Shutdown(context.Background()))
		assert.Contains(t, spans.String(), "GET /fail")
		assert.Contains(t, spans.String(), traceID)
	})
}
