package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"tokenrisk/internal/config"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	cfg       *config.Config
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Checks    map[string]ServiceHealth `json:"checks,omitempty"`
}

// ServiceHealth represents individual dependency health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version, buildTime string, cfg *config.Config, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		cfg:       cfg,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}

	hs.logger.DebugContext(ctx, "HealthCheck: completed",
		slog.String("status", status.Status),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return status
}

// ReadinessCheck reports whether the service can enrich data: an API key is
// configured, the token table is populated and the data directory exists.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Checks: map[string]ServiceHealth{
			"api_key":     hs.checkAPIKey(),
			"token_table": hs.checkTokenTable(),
			"data_dir":    hs.checkDataDir(),
		},
	}

	for name, check := range status.Checks {
		if check.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "ReadinessCheck: dependency not ready",
				slog.String("check", name),
				slog.String("message", check.Message))
		}
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"name":         config.AppName,
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}

	return result
}

func (hs *HealthService) checkAPIKey() ServiceHealth {
	if hs.cfg.API.Key == "" {
		return ServiceHealth{Status: "not_ready", Message: "market data API key is not configured"}
	}
	return ServiceHealth{Status: "ready"}
}

func (hs *HealthService) checkTokenTable() ServiceHealth {
	if len(hs.cfg.Tokens) == 0 {
		return ServiceHealth{Status: "not_ready", Message: "token table is empty"}
	}
	return ServiceHealth{Status: "ready", Message: fmt.Sprintf("%d tokens", len(hs.cfg.Tokens))}
}

func (hs *HealthService) checkDataDir() ServiceHealth {
	dir := hs.cfg.Batch.BaseDir
	if dir == "" {
		dir = "."
	}
	info, err := os.Stat(dir)
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("data directory not accessible: %v", err)}
	}
	if !info.IsDir() {
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("data path is not a directory: %s", dir)}
	}
	return ServiceHealth{Status: "ready"}
}
