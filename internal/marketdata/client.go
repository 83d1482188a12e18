package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/time/rate"

	"tokenrisk/internal/config"
)

const (
	supplyField     = "circSupply"
	maxResponseSize = 32 << 20
)

// Client talks to the market data API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	recorder   Recorder
	tracer     trace.Tracer
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each request, including time spent waiting on the rate limiter
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit paces outbound requests. Zero or negative disables pacing.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) ClientOption {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithTracer sets the tracer used for per-request spans
func WithTracer(t trace.Tracer) ClientOption {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// NewClient creates a client for baseURL authenticated with apiKey
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		timeout:    config.DefaultAPITimeout,
		httpClient: &http.Client{},
		logger:     slog.Default(),
		recorder:   nopRecorder{},
		tracer:     noop.NewTracerProvider().Tracer("marketdata"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "marketdata")
	return c
}

// NewClientFromConfig creates a client from the API configuration
func NewClientFromConfig(cfg config.APIConfig, opts ...ClientOption) *Client {
	base := []ClientOption{
		WithTimeout(cfg.Timeout),
		WithRateLimit(cfg.RateLimitRPS),
	}
	return NewClient(cfg.BaseURL, cfg.Key, append(base, opts...)...)
}

// FetchBars fetches numIntervals OHLCV bars for unit. An empty array is ReasonEmpty.
func (c *Client) FetchBars(ctx context.Context, unit, interval string, numIntervals int) Result[[]RawBar] {
	query := url.Values{}
	query.Set("unit", unit)
	query.Set("interval", interval)
	query.Set("numIntervals", strconv.Itoa(numIntervals))

	var bars []RawBar
	if f := c.getJSON(ctx, OpOHLCV, config.OHLCVPath, query, &bars); f != nil {
		return Absent[[]RawBar](f)
	}
	if len(bars) == 0 {
		return Absent[[]RawBar](c.fail(ctx, &Failure{Reason: ReasonEmpty, Op: OpOHLCV}))
	}
	return Present(bars)
}

// FetchCirculatingSupply fetches the circulating supply for unit, rounded
// half-to-even and floored at 1.
func (c *Client) FetchCirculatingSupply(ctx context.Context, unit string) Result[int64] {
	query := url.Values{}
	query.Set("unit", unit)

	var payload map[string]json.RawMessage
	if f := c.getJSON(ctx, OpMarketCap, config.MarketCapPath, query, &payload); f != nil {
		return Absent[int64](f)
	}

	raw, ok := payload[supplyField]
	if !ok || string(raw) == "null" {
		return Absent[int64](c.fail(ctx, &Failure{
			Reason: ReasonMissingField,
			Op:     OpMarketCap,
			Err:    fmt.Errorf("field %q not present", supplyField),
		}))
	}

	supply, err := parseSupply(raw)
	if err != nil {
		return Absent[int64](c.fail(ctx, &Failure{Reason: ReasonMalformed, Op: OpMarketCap, Err: err}))
	}
	return Present(supply)
}

// parseSupply accepts a JSON number or numeric string
func parseSupply(raw json.RawMessage) (int64, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("%s: %w", supplyField, err)
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", supplyField, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%s: out of range: %v", supplyField, f)
	}
	return max(int64(math.RoundToEven(f)), 1), nil
}

// getJSON performs one GET and decodes the body into out
func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) *Failure {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "marketdata."+op, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("unit", query.Get("unit"))))
	defer span.End()

	fail := func(f *Failure) *Failure {
		span.RecordError(f)
		span.SetStatus(codes.Error, string(f.Reason))
		return c.fail(ctx, f)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fail(&Failure{Reason: classify(ctx, err), Op: op, Err: err})
		}
	}

	endpoint := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fail(&Failure{Reason: ReasonTransport, Op: op, Err: err})
	}
	req.Header.Set(config.APIKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.recorder.ObserveGatewayRequest(ctx, op, time.Since(start))
	if err != nil {
		return fail(&Failure{Reason: classify(ctx, err), Op: op, Err: err})
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, config.MaxErrorBodyExcerpt))
		return fail(&Failure{
			Reason:     ReasonStatus,
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(excerpt))),
		})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fail(&Failure{Reason: classify(ctx, err), Op: op, Err: err})
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fail(&Failure{Reason: ReasonMalformed, Op: op, Err: err})
	}
	return nil
}

// fail logs and counts a failure, then returns it
func (c *Client) fail(ctx context.Context, f *Failure) *Failure {
	attrs := []any{
		slog.String("op", f.Op),
		slog.String("reason", string(f.Reason)),
	}
	if f.StatusCode != 0 {
		attrs = append(attrs, slog.Int("status", f.StatusCode))
	}
	if f.Err != nil {
		attrs = append(attrs, slog.String("error", f.Err.Error()))
	}
	c.logger.WarnContext(ctx, "market data request failed", attrs...)
	c.recorder.RecordGatewayFailure(ctx, f.Op, string(f.Reason))
	return f
}

// classify maps a request error to timeout or transport
func classify(ctx context.Context, err error) FailureReason {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	return ReasonTransport
}
