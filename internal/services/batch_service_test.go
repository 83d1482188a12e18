package services

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tokenrisk/internal/config"
	"tokenrisk/internal/marketdata"
	"tokenrisk/internal/shared/testutil"
	"tokenrisk/pkg/contracts/domain"
)

// slowProcessor completes items in reverse order of submission
type slowProcessor struct {
	running  atomic.Int32
	maxSeen  atomic.Int32
	statuses map[string]domain.ItemStatus
}

func (p *slowProcessor) ProcessItem(_ context.Context, item domain.BatchItem) ItemReport {
	n := p.running.Add(1)
	defer p.running.Add(-1)
	for {
		seen := p.maxSeen.Load()
		if n <= seen || p.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	delay := map[string]time.Duration{"A": 30 * time.Millisecond, "B": 15 * time.Millisecond}[item.Symbol]
	time.Sleep(delay)

	status := domain.ItemCompleted
	if s, ok := p.statuses[item.Symbol]; ok {
		status = s
	}
	return ItemReport{Item: item, Status: status}
}

func items(symbols ...string) []domain.BatchItem {
	out := make([]domain.BatchItem, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, domain.NewBatchItem("data", s))
	}
	return out
}

func TestBatchRunKeepsOrderAndIsolatesFailures(t *testing.T) {
	tests := []struct {
		name    string
		workers int
	}{
		{name: "sequential", workers: 1},
		{name: "parallel", workers: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &slowProcessor{statuses: map[string]domain.ItemStatus{
				"B": domain.ItemFailed,
				"C": domain.ItemSkipped,
			}}
			logger, handler := testutil.NewTestLogger(t)

			report := NewBatchService(proc, tt.workers, logger).Run(context.Background(), items("A", "B", "C", "D"))

			require.Len(t, report.Items, 4)
			for i, sym := range []string{"A", "B", "C", "D"} {
				assert.Equal(t, sym, report.Items[i].Item.Symbol)
			}
			assert.Equal(t, 2, report.Completed)
			assert.Equal(t, 1, report.Failed)
			assert.Equal(t, 1, report.Skipped)
			assert.False(t, report.Success())
			assert.Equal(t, 1, report.ExitCode())
			assert.LessOrEqual(t, int(proc.maxSeen.Load()), tt.workers)

			summaries := report.Summaries()
			require.Len(t, summaries, 4)
			assert.Equal(t, "B", summaries[1].Symbol)
			assert.Equal(t, string(domain.ItemFailed), summaries[1].Status)
			assert.Equal(t, string(domain.ItemSkipped), summaries[2].Status)
			testutil.AssertLogContains(t, handler, slog.LevelWarn, "Batch finished")
		})
	}
}

func TestBatchRunAllCompleted(t *testing.T) {
	proc := new(MockItemProcessor)
	for _, item := range items("SNEK", "IAG") {
		proc.On("ProcessItem", mock.Anything, item).Return(ItemReport{Item: item, Status: domain.ItemCompleted})
	}

	report := NewBatchService(proc, 0, nil).Run(context.Background(), items("SNEK", "IAG"))

	assert.True(t, report.Success())
	assert.Equal(t, 0, report.ExitCode())
	proc.AssertExpectations(t)
}

func TestBatchRunCancelledStopsScheduling(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())
	cancelErr := errors.New("interrupted")

	proc := new(MockItemProcessor)
	first := items("SNEK")[0]
	proc.On("ProcessItem", mock.Anything, first).
		Run(func(mock.Arguments) { cancel(cancelErr) }).
		Return(ItemReport{Item: first, Status: domain.ItemCompleted})

	report := NewBatchService(proc, 1, nil).Run(ctx, items("SNEK", "IAG", "HUNT"))

	require.Len(t, report.Items, 3)
	assert.Equal(t, domain.ItemCompleted, report.Items[0].Status)
	assert.Equal(t, 2, report.NotRun)
	assert.Equal(t, 2, report.Failed)
	assert.ErrorIs(t, report.Items[2].Err, cancelErr)
	assert.Equal(t, "HUNT", report.Items[2].Item.Symbol)
	assert.Equal(t, 1, report.ExitCode())
	proc.AssertNumberOfCalls(t, "ProcessItem", 1)
}

func TestBatchRunWithMarketAPI(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, dir, "SNEK.csv", "DATE,AVG_HEALTH\n2024-01-01,3\n")
	writeInput(t, dir, "IAG.csv", "DATE,AVG_HEALTH\n2024-01-01,2\n")

	iagUnit := config.DefaultTokens["IAG"]
	api := testutil.NewMarketAPI(t)
	api.SetBars(snekUnit, testutil.Bar{Day: "2024-01-01", High: 2.0, Low: 1.8, Close: 2.0, Volume: 500000})
	api.SetSupply(snekUnit, 1_000_000)

	cfg := config.Default()
	cfg.Batch.BaseDir = dir
	cfg.Items = []domain.BatchItem{domain.NewBatchItem("", "SNEK"), domain.NewBatchItem("", "IAG")}

	client := marketdata.NewClient(api.URL(), testutil.FixtureAPIKey)
	enrich := NewEnrichmentService(client, cfg.Tokens, nil)
	report := NewBatchService(enrich, cfg.Batch.Workers, nil).Run(context.Background(), cfg.ResolvedItems())

	require.Len(t, report.Items, 2)
	assert.Equal(t, domain.ItemCompleted, report.Items[0].Status)
	assert.Equal(t, domain.ItemSkipped, report.Items[1].Status, "IAG has no bars on the fake API")
	assert.FileExists(t, filepath.Join(dir, "SNEK_with_OLRS.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "IAG_with_OLRS.csv"))
	assert.Equal(t, 1, report.ExitCode())

	var units []string
	for _, r := range api.Requests() {
		units = append(units, r.Query.Get("unit"))
	}
	assert.Contains(t, units, iagUnit)
}
