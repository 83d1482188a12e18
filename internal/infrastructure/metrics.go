package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the enrichment instruments. A nil *Metrics records nothing.
type Metrics struct {
	items           metric.Int64Counter
	rows            metric.Int64Counter
	gatewayFailures metric.Int64Counter
	gatewayDuration metric.Float64Histogram
	httpRequests    metric.Int64Counter
	httpDuration    metric.Float64Histogram
}

// NewMetrics creates the instruments on meter. Exported names:
// olrs_items_total{status}, olrs_rows_total{outcome},
// olrs_gateway_failures_total{op,reason}, olrs_gateway_request_duration_seconds{op},
// olrs_http_requests_total{method,route,status_code}, olrs_http_request_duration_seconds{method,route}.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	items, err := meter.Int64Counter(
		"olrs.items",
		metric.WithDescription("Batch items processed, by terminal status"),
	)
	if err != nil {
		return nil, err
	}

	rows, err := meter.Int64Counter(
		"olrs.rows",
		metric.WithDescription("Output rows written, by merge outcome"),
	)
	if err != nil {
		return nil, err
	}

	gatewayFailures, err := meter.Int64Counter(
		"olrs.gateway.failures",
		metric.WithDescription("Market data gateway failures, by operation and reason"),
	)
	if err != nil {
		return nil, err
	}

	gatewayDuration, err := meter.Float64Histogram(
		"olrs.gateway.request.duration",
		metric.WithDescription("Market data gateway request duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20),
	)
	if err != nil {
		return nil, err
	}

	httpRequests, err := meter.Int64Counter(
		"olrs.http.requests",
		metric.WithDescription("Scoring API requests, by route and status"),
	)
	if err != nil {
		return nil, err
	}

	httpDuration, err := meter.Float64Histogram(
		"olrs.http.request.duration",
		metric.WithDescription("Scoring API request duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		items:           items,
		rows:            rows,
		gatewayFailures: gatewayFailures,
		gatewayDuration: gatewayDuration,
		httpRequests:    httpRequests,
		httpDuration:    httpDuration,
	}, nil
}

// RecordItem counts one batch item with its terminal status
func (m *Metrics) RecordItem(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.items.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordRows counts n output rows with the given outcome
func (m *Metrics) RecordRows(ctx context.Context, outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rows.Add(ctx, int64(n), metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordGatewayFailure counts one gateway failure
func (m *Metrics) RecordGatewayFailure(ctx context.Context, op, reason string) {
	if m == nil {
		return
	}
	m.gatewayFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("reason", reason),
	))
}

// ObserveGatewayRequest records the duration of one gateway request
func (m *Metrics) ObserveGatewayRequest(ctx context.Context, op string, d time.Duration) {
	if m == nil {
		return
	}
	m.gatewayDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("op", op)))
}

// ObserveHTTPRequest counts one served request and records its duration
func (m *Metrics) ObserveHTTPRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status_code", status),
	))
	m.httpDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
	))
}
