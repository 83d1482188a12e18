package services

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"tokenrisk/internal/marketdata"
	"tokenrisk/pkg/contracts/domain"
)

// MockGateway is a mock for the marketdata.Gateway interface
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) FetchBars(ctx context.Context, unit, interval string, numIntervals int) marketdata.Result[[]marketdata.RawBar] {
	args := m.Called(ctx, unit, interval, numIntervals)
	return args.Get(0).(marketdata.Result[[]marketdata.RawBar])
}

func (m *MockGateway) FetchCirculatingSupply(ctx context.Context, unit string) marketdata.Result[int64] {
	args := m.Called(ctx, unit)
	return args.Get(0).(marketdata.Result[int64])
}

// MockItemProcessor is a mock for the ItemProcessor interface
type MockItemProcessor struct {
	mock.Mock
}

func (m *MockItemProcessor) ProcessItem(ctx context.Context, item domain.BatchItem) ItemReport {
	args := m.Called(ctx, item)
	return args.Get(0).(ItemReport)
}

// countingRecorder records item and row metrics in memory
type countingRecorder struct {
	mu    sync.Mutex
	items map[string]int
	rows  map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{items: map[string]int{}, rows: map[string]int{}}
}

func (r *countingRecorder) RecordItem(_ context.Context, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[status]++
}

func (r *countingRecorder) RecordRows(_ context.Context, outcome string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[outcome] += n
}
