package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"tokenrisk/internal/config"
	apierrors "tokenrisk/internal/errors"
	"tokenrisk/internal/infrastructure"
	customMiddleware "tokenrisk/internal/middleware"
	"tokenrisk/internal/services"
	handlers "tokenrisk/internal/transport/http"
	"tokenrisk/pkg/contracts"
)

// Application represents the scoring API server container
type Application struct {
	Config    *config.Config
	Router    *chi.Mux
	Server    *http.Server
	Logger    *slog.Logger
	Telemetry *infrastructure.TelemetryProviders
	Services  *ServiceContainer

	errorHandler *apierrors.ErrorHandler
	validator    *customMiddleware.ValidationMiddleware
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Score  *services.ScoreService
	Health *services.HealthService
}

// NewApplication wires services, router and server from an already loaded
// configuration, logger and telemetry providers.
func NewApplication(cfg *config.Config, logger *slog.Logger, telemetry *infrastructure.TelemetryProviders) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	if telemetry == nil {
		return nil, errors.New("telemetry providers are required")
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version))

	errorHandler := apierrors.NewErrorHandler(logger, cfg.Logging.Development)
	a := &Application{
		Config:       cfg,
		Logger:       logger,
		Telemetry:    telemetry,
		errorHandler: errorHandler,
		validator:    customMiddleware.NewValidationMiddleware(logger, errorHandler),
	}

	a.initializeServices()
	a.setupRouter()
	a.createServer()

	return a, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() {
	a.Services = &ServiceContainer{
		Score:  services.NewScoreService(a.Logger),
		Health: services.NewHealthService(contracts.Version, contracts.BuildTime, a.Config, a.Logger),
	}
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Ordering: RequestID → RealIP → OTel → Logger → Recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	// Scrapes stay outside the instrumented group so they do not count themselves
	r.Mount(config.MetricsEndpoint, handlers.NewMetricsHandler(a.Telemetry.MetricsHandler()).Routes())

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.Telemetry).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.errorHandler))
		r.Use(customMiddleware.SecurityHeaders)

		if rl := a.Config.Server.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.errorHandler, a.Logger).Handler)
		}

		a.setupAPIRoutes(r)
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	scoreHandler := handlers.NewScoreHandler(a.Services.Score, a.validator, a.errorHandler, a.Logger)
	tokenHandler := handlers.NewTokenHandler(a.Config.Tokens, a.validator, a.errorHandler, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(chimw.Timeout(a.Config.Server.WriteTimeout))

		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		r.Route("/v1", func(r chi.Router) {
			r.With(customMiddleware.ContentTypeValidator(a.errorHandler, "application/json")).
				Post("/olrs", scoreHandler.Score)
			r.Mount("/tokens", tokenHandler.Routes())
		})
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("address", ln.Addr().String()),
		slog.String("level", a.Config.Logging.Level))

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Shutdown requested", slog.String("cause", context.Cause(ctx).Error()))
	}

	return a.Stop(context.WithoutCancel(ctx))
}

// Run listens on the configured port and serves until ctx is cancelled
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	start := time.Now()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if err := a.Telemetry.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete",
		slog.Duration("duration", time.Since(start)))
	return nil
}
