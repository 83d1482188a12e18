// Package series turns raw market data bars into normalized daily bars.
package series

import (
	"math"
	"time"

	"github.com/guregu/null/v5"

	"tokenrisk/internal/marketdata"
	"tokenrisk/pkg/contracts/domain"
)

// Stats reports what Normalize kept and dropped
type Stats struct {
	Received int
	Kept     int
	Skipped  int
}

// Normalize converts raw bars to daily bars in the order received.
// Volatility is max((high-low)/low, 0) × 100 and the date is the UTC day of
// the bar's unix timestamp. Bars with low <= 0, a negative close or volume,
// or any non-finite price or volume are skipped and counted in Stats.
func Normalize(raw []marketdata.RawBar) ([]domain.MarketDayBar, Stats) {
	stats := Stats{Received: len(raw)}
	bars := make([]domain.MarketDayBar, 0, len(raw))

	for _, r := range raw {
		if !valid(r) {
			stats.Skipped++
			continue
		}
		bars = append(bars, domain.MarketDayBar{
			Date:       DayOf(r.Time),
			Close:      r.Close,
			Volatility: Volatility(r.High, r.Low),
			Volume:     r.Volume,
		})
	}

	stats.Kept = len(bars)
	return bars, stats
}

// Volatility returns the intraday range as a percentage of low, never negative.
// Callers must ensure low > 0.
func Volatility(high, low float64) float64 {
	return math.Max((high-low)/low, 0) * 100
}

// DayOf returns UTC midnight of the day containing unix seconds ts
func DayOf(ts int64) time.Time {
	t := time.Unix(ts, 0).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WithMarketCap returns a copy of bars with MarketCapADA = close × supply.
// When supply is absent every bar keeps a null market cap.
func WithMarketCap(bars []domain.MarketDayBar, supply marketdata.Result[int64]) []domain.MarketDayBar {
	out := make([]domain.MarketDayBar, len(bars))
	copy(out, bars)

	s, ok := supply.Get()
	if !ok || s < 1 {
		return out
	}
	for i := range out {
		out[i].MarketCapADA = null.FloatFrom(out[i].Close * float64(s))
	}
	return out
}

func valid(r marketdata.RawBar) bool {
	for _, v := range []float64{r.High, r.Low, r.Close, r.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.Low > 0 && r.Close >= 0 && r.Volume >= 0
}
