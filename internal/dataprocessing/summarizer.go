package dataprocessing

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/guregu/null/v5"
	"github.com/shopspring/decimal"

	"tokenrisk/internal/config"
	"tokenrisk/pkg/contracts/domain"
)

// DefaultRecentDays is how many trailing scores a summary keeps
const DefaultRecentDays = 10

// Summarizer condenses enriched tables into one risk summary per token
type Summarizer struct {
	logger     *slog.Logger
	recentDays int
	dateFormat string
}

// SummarizerConfig holds configuration options for the Summarizer
type SummarizerConfig struct {
	RecentDays int    // Trailing scored days kept in Recent
	DateFormat string // Format for date strings in output
}

// TokenSummary describes the scored days of one enriched table
type TokenSummary struct {
	Symbol     string     `json:"symbol"`
	Status     string     `json:"status"`
	Rows       int        `json:"rows"`
	Scored     int        `json:"scored"`
	FirstDate  string     `json:"first_date,omitempty"`
	LastDate   string     `json:"last_date,omitempty"`
	LatestOLRS null.Float `json:"latest_olrs"`
	Change     null.Float `json:"change"` // Latest minus the previous scored day
	MeanOLRS   null.Float `json:"mean_olrs"`
	MinOLRS    null.Float `json:"min_olrs"`
	MaxOLRS    null.Float `json:"max_olrs"`
	Recent     []float64  `json:"recent"` // Trailing scores, oldest first
}

// summaryHeader is the CSV column order
var summaryHeader = []string{
	"symbol", "status", "rows", "scored", "first_date", "last_date",
	"latest_olrs", "change", "mean_olrs", "min_olrs", "max_olrs", "recent",
}

// NewSummarizer creates a new summarizer with the given configuration
func NewSummarizer(logger *slog.Logger, cfg SummarizerConfig) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RecentDays <= 0 {
		cfg.RecentDays = DefaultRecentDays
	}
	if cfg.DateFormat == "" {
		cfg.DateFormat = domain.DateKeyLayout
	}
	return &Summarizer{
		logger:     logger.With(slog.String("component", "summarizer")),
		recentDays: cfg.RecentDays,
		dateFormat: cfg.DateFormat,
	}
}

// Summarize builds the summary of one token's merged records. Scored rows are
// ordered by date; rows keep their input order when dates tie.
func (s *Summarizer) Summarize(symbol string, records []domain.MergedRecord) TokenSummary {
	summary := TokenSummary{
		Symbol: symbol,
		Status: string(domain.ItemCompleted),
		Rows:   len(records),
		Recent: []float64{},
	}

	scored := make([]domain.MergedRecord, 0, len(records))
	for _, r := range records {
		if r.Scored() {
			scored = append(scored, r)
		}
	}
	summary.Scored = len(scored)
	if len(scored) == 0 {
		return summary
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Market.Date.Before(scored[j].Market.Date)
	})

	sum := decimal.Zero
	minScore, maxScore := scored[0].OLRS.Float64, scored[0].OLRS.Float64
	for _, r := range scored {
		v := r.OLRS.Float64
		sum = sum.Add(decimal.NewFromFloat(v))
		if v < minScore {
			minScore = v
		}
		if v > maxScore {
			maxScore = v
		}
	}

	first, last := scored[0], scored[len(scored)-1]
	summary.FirstDate = first.Market.Date.Format(s.dateFormat)
	summary.LastDate = last.Market.Date.Format(s.dateFormat)
	summary.LatestOLRS = null.FloatFrom(last.OLRS.Float64)
	summary.MeanOLRS = null.FloatFrom(sum.Div(decimal.NewFromInt(int64(len(scored)))).RoundBank(2).InexactFloat64())
	summary.MinOLRS = null.FloatFrom(minScore)
	summary.MaxOLRS = null.FloatFrom(maxScore)
	if len(scored) > 1 {
		prev := scored[len(scored)-2].OLRS.Float64
		summary.Change = null.FloatFrom(decimal.NewFromFloat(last.OLRS.Float64).Sub(decimal.NewFromFloat(prev)).InexactFloat64())
	}

	from := len(scored) - s.recentDays
	if from < 0 {
		from = 0
	}
	for _, r := range scored[from:] {
		summary.Recent = append(summary.Recent, r.OLRS.Float64)
	}
	return summary
}

// Write writes summaries as JSON when path ends in .json and as CSV otherwise
func (s *Summarizer) Write(ctx context.Context, path string, summaries []TokenSummary) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return s.WriteJSON(ctx, path, summaries)
	}
	return s.WriteCSV(ctx, path, summaries)
}

// WriteCSV writes summaries to a CSV file, one row per token
func (s *Summarizer) WriteCSV(ctx context.Context, path string, summaries []TokenSummary) error {
	if err := config.EnsureParentDir(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(summaryHeader); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	for _, sum := range summaries {
		recent := make([]string, len(sum.Recent))
		for i, v := range sum.Recent {
			recent[i] = formatFloat(v)
		}
		row := []string{
			sum.Symbol,
			sum.Status,
			strconv.Itoa(sum.Rows),
			strconv.Itoa(sum.Scored),
			sum.FirstDate,
			sum.LastDate,
			formatNull(sum.LatestOLRS),
			formatNull(sum.Change),
			formatNull(sum.MeanOLRS),
			formatNull(sum.MinOLRS),
			formatNull(sum.MaxOLRS),
			strings.Join(recent, ";"),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write summary row for %s: %w", sum.Symbol, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush summary file: %w", err)
	}

	s.logger.InfoContext(ctx, "Wrote OLRS summary",
		slog.String("path", path),
		slog.Int("tokens", len(summaries)))
	return nil
}

// WriteJSON writes summaries to an indented JSON file
func (s *Summarizer) WriteJSON(ctx context.Context, path string, summaries []TokenSummary) error {
	if err := config.EnsureParentDir(path); err != nil {
		return err
	}
	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summaries: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write summary file: %w", err)
	}

	s.logger.InfoContext(ctx, "Wrote OLRS summary",
		slog.String("path", path),
		slog.Int("tokens", len(summaries)))
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatNull(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return formatFloat(v.Float64)
}
