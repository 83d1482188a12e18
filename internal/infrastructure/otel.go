package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"tokenrisk/internal/config"
)

// InstrumentationName names the meter and tracer used across the module
const InstrumentationName = "tokenrisk"

// TelemetryProviders holds the OpenTelemetry providers and the Prometheus
// registry their metrics are exported into.
type TelemetryProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Registry       *prometheus.Registry
	Tracer         trace.Tracer
	Meter          metric.Meter
	Metrics        *Metrics
	logger         *slog.Logger
}

// TelemetryOption customizes InitializeOTel
type TelemetryOption func(*telemetryOptions)

type telemetryOptions struct {
	traceWriter io.Writer
}

// WithTraceWriter sets where the stdout trace exporter writes spans
func WithTraceWriter(w io.Writer) TelemetryOption {
	return func(o *telemetryOptions) { o.traceWriter = w }
}

// InitializeOTel sets up a meter provider exporting into a dedicated Prometheus
// registry and, when configured, a tracer provider with the stdout exporter.
func InitializeOTel(cfg config.TelemetryConfig, version string, logger *slog.Logger, opts ...TelemetryOption) (*TelemetryProviders, error) {
	options := telemetryOptions{traceWriter: os.Stderr}
	for _, opt := range opts {
		opt(&options)
	}
	if logger == nil {
		logger = GetLogger()
	}

	ctx := context.Background()
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(version),
	)

	providers := &TelemetryProviders{
		Registry: prometheus.NewRegistry(),
		logger:   logger,
	}

	if err := providers.initializeMetrics(res, version); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	if err := providers.initializeTracing(cfg.TraceExporter, res, version, options.traceWriter); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	logger.InfoContext(ctx, "OpenTelemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("trace_exporter", cfg.TraceExporter))

	return providers, nil
}

func (p *TelemetryProviders) initializeMetrics(res *resource.Resource, version string) error {
	exporter, err := otelprom.New(
		otelprom.WithRegisterer(p.Registry),
		otelprom.WithoutScopeInfo(),
		otelprom.WithoutTargetInfo(),
	)
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	p.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	p.Meter = p.MeterProvider.Meter(InstrumentationName, metric.WithInstrumentationVersion(version))

	p.Metrics, err = NewMetrics(p.Meter)
	return err
}

func (p *TelemetryProviders) initializeTracing(exporterName string, res *resource.Resource, version string, w io.Writer) error {
	switch exporterName {
	case "", "none":
		p.Tracer = noop.NewTracerProvider().Tracer(InstrumentationName)
		return nil
	case "stdout":
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		p.TracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		p.Tracer = p.TracerProvider.Tracer(InstrumentationName, trace.WithInstrumentationVersion(version))
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", exporterName)
	}
}

// MetricsHandler serves the registry in the Prometheus exposition format
func (p *TelemetryProviders) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the registry to path in the node-exporter textfile format
func (p *TelemetryProviders) WriteTextfile(path string) error {
	if err := config.EnsureParentDir(path); err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(path, p.Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// Shutdown flushes and stops the providers
func (p *TelemetryProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("opentelemetry shutdown errors: %w", err)
	}

	p.logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if err == nil || !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
