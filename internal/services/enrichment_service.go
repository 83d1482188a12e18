package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"tokenrisk/internal/config"
	"tokenrisk/internal/dataprocessing"
	"tokenrisk/internal/exporter"
	"tokenrisk/internal/infrastructure"
	"tokenrisk/internal/marketdata"
	"tokenrisk/internal/merge"
	"tokenrisk/internal/series"
	"tokenrisk/pkg/contracts/domain"
)

// Row outcomes reported to the metrics recorder
const (
	RowsScored      = "scored"
	RowsUnmatched   = "unmatched"
	RowsNoMarketCap = "no_market_cap"
	RowsUnscored    = "unscored"
)

// ItemRecorder receives per-item batch metrics
type ItemRecorder interface {
	RecordItem(ctx context.Context, status string)
	RecordRows(ctx context.Context, outcome string, n int)
}

type nopItemRecorder struct{}

func (nopItemRecorder) RecordItem(context.Context, string)      {}
func (nopItemRecorder) RecordRows(context.Context, string, int) {}

// ItemReport is the outcome of one batch item
type ItemReport struct {
	Item           domain.BatchItem             `json:"item"`
	Status         domain.ItemStatus            `json:"status"`
	TraceID        string                       `json:"trace_id"`
	Rows           int                          `json:"rows"`
	Matched        int                          `json:"matched"`
	Scored         int                          `json:"scored"`
	Unmatched      int                          `json:"unmatched"`
	NoMarketCap    int                          `json:"no_market_cap"`
	Unscored       int                          `json:"unscored"`
	SkippedBars    int                          `json:"skipped_bars"`
	DuplicateDates int                          `json:"duplicate_dates"`
	SupplyMissing  bool                         `json:"supply_missing"`
	Duration       time.Duration                `json:"duration"`
	Summary        *dataprocessing.TokenSummary `json:"summary,omitempty"`
	Err            error                        `json:"-"`
}

// Error returns the item error message, if any
func (r ItemReport) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// EnrichmentService enriches one local health table with market data and OLRS scores
type EnrichmentService struct {
	gateway      marketdata.Gateway
	tokens       config.TokenTable
	interval     string
	numIntervals int
	writer       *exporter.CSVWriter
	summarizer   *dataprocessing.Summarizer
	recorder     ItemRecorder
	tracer       trace.Tracer
	logger       *slog.Logger
}

// EnrichmentOption configures an EnrichmentService
type EnrichmentOption func(*EnrichmentService)

// WithItemRecorder sets the metrics recorder
func WithItemRecorder(r ItemRecorder) EnrichmentOption {
	return func(s *EnrichmentService) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithServiceTracer sets the tracer used for per-item spans
func WithServiceTracer(t trace.Tracer) EnrichmentOption {
	return func(s *EnrichmentService) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithSeriesWindow overrides the interval and number of intervals requested
func WithSeriesWindow(interval string, numIntervals int) EnrichmentOption {
	return func(s *EnrichmentService) {
		if interval != "" {
			s.interval = interval
		}
		if numIntervals > 0 {
			s.numIntervals = numIntervals
		}
	}
}

// NewEnrichmentService creates the per-item pipeline
func NewEnrichmentService(gateway marketdata.Gateway, tokens config.TokenTable, logger *slog.Logger, opts ...EnrichmentOption) *EnrichmentService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &EnrichmentService{
		gateway:      gateway,
		tokens:       tokens,
		interval:     config.DefaultInterval,
		numIntervals: config.DefaultNumIntervals,
		recorder:     nopItemRecorder{},
		tracer:       noop.NewTracerProvider().Tracer("services"),
		logger:       logger.With("component", "enrichment"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.writer = exporter.NewCSVWriter(logger)
	s.summarizer = dataprocessing.NewSummarizer(logger, dataprocessing.SummarizerConfig{})
	return s
}

// ProcessItem loads item.Input, fetches bars and circulating supply, merges and
// scores, and writes item.Output. Failures are reported, never returned.
// When no bars are available the output file is left untouched.
func (s *EnrichmentService) ProcessItem(ctx context.Context, item domain.BatchItem) (report ItemReport) {
	start := time.Now()
	ctx = infrastructure.WithTraceID(ctx, infrastructure.GenerateTraceID())
	ctx, span := s.tracer.Start(ctx, "olrs.item", trace.WithAttributes(
		attribute.String("symbol", item.Symbol),
		attribute.String("input", item.Input),
	))
	defer span.End()

	report = ItemReport{Item: item, TraceID: infrastructure.GetTraceID(ctx)}
	defer func() {
		report.Duration = time.Since(start)
		s.finish(ctx, span, &report)
	}()

	s.logger.InfoContext(ctx, "Processing batch item",
		slog.String("symbol", item.Symbol),
		slog.String("input", item.Input),
		slog.String("output", item.Output))

	unit, err := s.tokens.Lookup(item.Symbol)
	if err != nil {
		report.Status, report.Err = domain.ItemFailed, err
		return report
	}

	table, err := dataprocessing.LoadHealthTable(item.Input)
	if err != nil {
		report.Status, report.Err = domain.ItemFailed, fmt.Errorf("failed to load health table: %w", err)
		return report
	}
	report.Rows = len(table.Records)
	if n := table.InvalidDates(); n > 0 {
		s.logger.WarnContext(ctx, "Rows with unparseable DATE will not be enriched",
			slog.String("symbol", item.Symbol),
			slog.Int("count", n))
	}

	bars := s.gateway.FetchBars(ctx, unit, s.interval, s.numIntervals)
	raw, ok := bars.Get()
	if !ok {
		s.logger.WarnContext(ctx, "No API data available. CSV file remains unchanged.",
			slog.String("symbol", item.Symbol),
			slog.String("reason", string(bars.Failure.Reason)))
		report.Status, report.Err = domain.ItemSkipped, bars.Failure
		return report
	}

	supply := s.gateway.FetchCirculatingSupply(ctx, unit)
	if !supply.OK() {
		report.SupplyMissing = true
		s.logger.WarnContext(ctx, "Circulating supply unavailable, rows will not be scored",
			slog.String("symbol", item.Symbol),
			slog.String("reason", string(supply.Failure.Reason)))
	}

	normalized, stats := series.Normalize(raw)
	report.SkippedBars = stats.Skipped
	if stats.Skipped > 0 {
		s.logger.WarnContext(ctx, "Skipped malformed market bars",
			slog.String("symbol", item.Symbol),
			slog.Int("skipped", stats.Skipped),
			slog.Int("received", stats.Received))
	}

	merged := merge.Merge(table.Records, series.WithMarketCap(normalized, supply), merge.Options{})
	report.Matched = merged.Matched
	report.Scored = merged.Scored
	report.Unmatched = len(merged.Unmatched)
	report.NoMarketCap = len(merged.NoMarketCap)
	report.Unscored = len(merged.Unscored)
	report.DuplicateDates = merged.DuplicateDates
	if merged.DuplicateDates > 0 {
		s.logger.WarnContext(ctx, "Duplicate bar dates, first bar kept",
			slog.String("symbol", item.Symbol),
			slog.Int("duplicates", merged.DuplicateDates))
	}

	if err := s.writer.WriteMerged(item.Output, exporter.NewMergedTable(table.Columns, merged.Records)); err != nil {
		report.Status, report.Err = domain.ItemFailed, fmt.Errorf("failed to write output: %w", err)
		return report
	}

	report.Status = domain.ItemCompleted
	summary := s.summarizer.Summarize(item.Symbol, merged.Records)
	report.Summary = &summary
	return report
}

// finish logs the item summary and records metrics and span status
func (s *EnrichmentService) finish(ctx context.Context, span trace.Span, report *ItemReport) {
	s.recorder.RecordItem(ctx, string(report.Status))
	if report.Status == domain.ItemCompleted {
		s.recorder.RecordRows(ctx, RowsScored, report.Scored)
		s.recorder.RecordRows(ctx, RowsUnmatched, report.Unmatched)
		s.recorder.RecordRows(ctx, RowsNoMarketCap, report.NoMarketCap)
		s.recorder.RecordRows(ctx, RowsUnscored, report.Unscored)
	}

	span.SetAttributes(
		attribute.String("status", string(report.Status)),
		attribute.Int("rows", report.Rows),
		attribute.Int("scored", report.Scored),
	)

	attrs := []any{
		slog.String("symbol", report.Item.Symbol),
		slog.String("status", string(report.Status)),
		slog.Int("rows", report.Rows),
		slog.Int("matched", report.Matched),
		slog.Int("scored", report.Scored),
		slog.Int("unmatched", report.Unmatched),
		slog.Int("no_market_cap", report.NoMarketCap),
		slog.Duration("duration", report.Duration),
	}
	switch report.Status {
	case domain.ItemCompleted:
		span.SetStatus(codes.Ok, "")
		s.logger.InfoContext(ctx, "Batch item completed", attrs...)
	case domain.ItemSkipped:
		s.logger.WarnContext(ctx, "Batch item skipped", attrs...)
	default:
		span.RecordError(report.Err)
		span.SetStatus(codes.Error, report.Error())
		attrs = append(attrs, slog.String("error", report.Error()))
		if errors.Is(report.Err, config.ErrUnknownToken) {
			attrs = append(attrs, slog.Any("known_symbols", s.tokens.Symbols()))
		}
		s.logger.ErrorContext(ctx, "Batch item failed", attrs...)
	}
}
