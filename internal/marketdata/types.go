package marketdata

import (
	"context"
	"time"
)

// RawBar is one OHLCV interval as returned by the API
type RawBar struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Gateway fetches market data for a token unit
type Gateway interface {
	FetchBars(ctx context.Context, unit, interval string, numIntervals int) Result[[]RawBar]
	FetchCirculatingSupply(ctx context.Context, unit string) Result[int64]
}

// Recorder receives gateway request metrics
type Recorder interface {
	RecordGatewayFailure(ctx context.Context, op, reason string)
	ObserveGatewayRequest(ctx context.Context, op string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordGatewayFailure(context.Context, string, string)         {}
func (nopRecorder) ObserveGatewayRequest(context.Context, string, time.Duration) {}
