package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"tokenrisk/internal/config"
	"tokenrisk/internal/dataprocessing"
	"tokenrisk/pkg/contracts/domain"
)

// ItemProcessor runs a single batch item
type ItemProcessor interface {
	ProcessItem(ctx context.Context, item domain.BatchItem) ItemReport
}

// BatchReport summarizes a batch run. Items keep the configured order.
type BatchReport struct {
	Items     []ItemReport  `json:"items"`
	Completed int           `json:"completed"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	NotRun    int           `json:"not_run"`
	Duration  time.Duration `json:"duration"`
}

// Success reports whether every item completed
func (r BatchReport) Success() bool {
	return r.Completed == len(r.Items)
}

// ExitCode is 0 when every item completed and 1 otherwise
func (r BatchReport) ExitCode() int {
	if r.Success() {
		return 0
	}
	return 1
}

// Summaries returns one summary per item in item order. Items that did not
// complete carry only their symbol and status.
func (r BatchReport) Summaries() []dataprocessing.TokenSummary {
	out := make([]dataprocessing.TokenSummary, 0, len(r.Items))
	for _, item := range r.Items {
		if item.Summary != nil {
			out = append(out, *item.Summary)
			continue
		}
		out = append(out, dataprocessing.TokenSummary{
			Symbol: item.Item.Symbol,
			Status: string(item.Status),
			Rows:   item.Rows,
			Recent: []float64{},
		})
	}
	return out
}

// BatchService runs batch items with bounded parallelism
type BatchService struct {
	processor ItemProcessor
	workers   int
	logger    *slog.Logger
}

// NewBatchService creates a batch runner. Workers below 1 run sequentially.
func NewBatchService(processor ItemProcessor, workers int, logger *slog.Logger) *BatchService {
	if workers < 1 {
		workers = config.DefaultWorkers
	}
	if workers > config.MaxWorkers {
		workers = config.MaxWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchService{
		processor: processor,
		workers:   workers,
		logger:    logger.With("component", "batch"),
	}
}

// Run processes every item. A failing item never stops the others; once ctx is
// cancelled no new items are started and the remaining ones are reported as failed.
func (s *BatchService) Run(ctx context.Context, items []domain.BatchItem) BatchReport {
	start := time.Now()
	reports := make([]ItemReport, len(items))
	started := make([]bool, len(items))

	s.logger.InfoContext(ctx, "Starting batch",
		slog.Int("items", len(items)),
		slog.Int("workers", s.workers))

	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for i, item := range items {
		if ctx.Err() != nil {
			break
		}
		i, item := i, item
		g.Go(func() error {
			// the slot may free up only after cancellation
			if ctx.Err() != nil {
				return nil
			}
			started[i] = true
			reports[i] = s.processor.ProcessItem(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	report := BatchReport{Items: reports}
	for i := range reports {
		if !started[i] {
			reports[i] = ItemReport{Item: items[i], Status: domain.ItemFailed, Err: context.Cause(ctx)}
			report.NotRun++
		}
		switch reports[i].Status {
		case domain.ItemCompleted:
			report.Completed++
		case domain.ItemSkipped:
			report.Skipped++
		default:
			report.Failed++
		}
	}
	report.Duration = time.Since(start)

	level := slog.LevelInfo
	if !report.Success() {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "Batch finished",
		slog.Int("completed", report.Completed),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed),
		slog.Int("not_run", report.NotRun),
		slog.Duration("duration", report.Duration))

	return report
}
