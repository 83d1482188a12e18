package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenrisk/internal/config"
	apierrors "tokenrisk/internal/errors"
	"tokenrisk/internal/infrastructure"
	"tokenrisk/internal/shared/testutil"
	api "tokenrisk/pkg/contracts/api/v1"
)

const endToEndBody = `{"avg_health":3,"volatility":11.11111111111111,"volume":500000,"market_cap_ada":2000000}`

func newTestApp(t *testing.T, mutate func(cfg *config.Config)) (*Application, *testutil.BufferedSlogHandler) {
	t.Helper()
	cfg := config.Default()
	cfg.API.Key = "test-key"
	cfg.Batch.BaseDir = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}

	logger, logs := testutil.NewTestLogger(t)
	telemetry, err := infrastructure.InitializeOTel(cfg.Telemetry, "test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = telemetry.Shutdown(context.Background()) })

	a, err := NewApplication(cfg, logger, telemetry)
	require.NoError(t, err)
	return a, logs
}

func postScore(a *Application, body, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, config.ScoreEndpoint, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func TestNewApplication_RequiresDependencies(t *testing.T) {
	_, err := NewApplication(nil, nil, nil)
	assert.Error(t, err)

	_, err = NewApplication(config.Default(), nil, nil)
	assert.Error(t, err)
}

func TestRouter_Score(t *testing.T) {
	a, logs := newTestApp(t, nil)

	rec := postScore(a, endToEndBody, "application/json")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp api.ScoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 74.34, resp.OLRS)
	assert.Equal(t, 100.0, resp.Components.Health)

	requestID := rec.Header().Get("X-Request-ID")
	require.NotEmpty(t, requestID)
	assert.Equal(t, requestID, resp.TraceID)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	record, ok := logs.FindMessage("request completed")
	require.True(t, ok)
	assert.Equal(t, int64(http.StatusOK), record.Attrs["status"])
}

func TestRouter_Errors(t *testing.T) {
	a, _ := newTestApp(t, nil)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		ctype      string
		wantStatus int
		wantType   string
	}{
		{
			name:       "unsupported content type",
			method:     http.MethodPost,
			path:       config.ScoreEndpoint,
			body:       endToEndBody,
			ctype:      "text/plain",
			wantStatus: http.StatusUnsupportedMediaType,
			wantType:   apierrors.TypeInvalidRequest,
		},
		{
			name:       "validation failure",
			method:     http.MethodPost,
			path:       config.ScoreEndpoint,
			body:       `{"avg_health":1}`,
			ctype:      "application/json",
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:       "method not allowed",
			method:     http.MethodGet,
			path:       config.ScoreEndpoint,
			wantStatus: http.StatusMethodNotAllowed,
			wantType:   apierrors.TypeMethodNotAllowed,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/api/v1/nothing",
			wantStatus: http.StatusNotFound,
			wantType:   apierrors.TypeNotFound,
		},
		{
			name:       "unknown token",
			method:     http.MethodGet,
			path:       "/api/v1/tokens/NOPE",
			wantStatus: http.StatusNotFound,
			wantType:   apierrors.TypeUnknownToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.ctype != "" {
				req.Header.Set("Content-Type", tt.ctype)
			}
			rec := httptest.NewRecorder()
			a.Router.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, apierrors.ProblemContentType, rec.Header().Get("Content-Type"))

			var problem map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			assert.Equal(t, tt.wantType, problem["type"])
			assert.Equal(t, rec.Header().Get("X-Request-ID"), problem["trace_id"])
		})
	}
}

func TestRouter_HealthAndTokens(t *testing.T) {
	a, _ := newTestApp(t, nil)

	for _, path := range []string{
		config.HealthEndpoint,
		config.HealthEndpoint + "/ready",
		config.HealthEndpoint + "/live",
		config.VersionEndpoint,
		"/api/v1/tokens",
		"/api/v1/tokens/HUNT",
	} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	a, _ := newTestApp(t, nil)

	require.Equal(t, http.StatusOK, postScore(a, endToEndBody, "application/json").Code)

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, config.MetricsEndpoint, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `olrs_http_requests_total{method="POST",route="/api/v1/olrs",status_code="200"} 1`)
	assert.NotContains(t, body, `route="/metrics"`)
}

func TestRouter_RateLimit(t *testing.T) {
	a, _ := newTestApp(t, func(cfg *config.Config) {
		cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.5, Burst: 1}
	})

	first := httptest.NewRecorder()
	a.Router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, config.HealthEndpoint, nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	a.Router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, config.HealthEndpoint, nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "2", second.Header().Get("Retry-After"))
}

func TestApplication_ServeAndShutdown(t *testing.T) {
	a, logs := newTestApp(t, func(cfg *config.Config) {
		cfg.Server.ShutdownTimeout = 5 * time.Second
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	resp, err := http.Get(fmt.Sprintf("http://%s%s", ln.Addr(), config.HealthEndpoint))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Application shutdown complete")
}
