// Package merge joins local health records with market day bars by calendar day
// and attaches an OLRS score where every input is available.
package merge

import (
	"github.com/guregu/null/v5"

	"tokenrisk/internal/olrs"
	"tokenrisk/pkg/contracts/domain"
)

// Options configures Merge. The zero value scores with olrs.Score.
type Options struct {
	Score func(olrs.Inputs) float64
}

// Result is the outcome of a merge. Unmatched, NoMarketCap and Unscored hold
// indexes into the local input:
//   - Unmatched: no bar shares the row's day, or the row's date is invalid
//   - NoMarketCap: a bar exists but carries no market cap, so the row is passthrough
//   - Unscored: matched rows whose inputs failed validation
type Result struct {
	Records        []domain.MergedRecord
	Matched        int
	Scored         int
	Unmatched      []int
	NoMarketCap    []int
	Unscored       []int
	DuplicateDates int
}

// Merge left-joins local onto bars by date key. The output has one record per
// local row, in input order. When several bars share a date the first one wins.
// A bar without market cap leaves the row passthrough and is listed in NoMarketCap.
func Merge(local []domain.LocalHealthRecord, bars []domain.MarketDayBar, opts Options) Result {
	score := opts.Score
	if score == nil {
		score = olrs.Score
	}

	index, duplicates := indexByDate(bars)
	result := Result{
		Records:        make([]domain.MergedRecord, 0, len(local)),
		DuplicateDates: duplicates,
	}

	for i, rec := range local {
		merged := domain.MergedRecord{Local: rec}

		bar, ok := index[rec.DateKey()]
		if !ok {
			result.Unmatched = append(result.Unmatched, i)
			result.Records = append(result.Records, merged)
			continue
		}
		if !bar.HasMarketCap() {
			result.NoMarketCap = append(result.NoMarketCap, i)
			result.Records = append(result.Records, merged)
			continue
		}

		result.Matched++
		b := bar
		merged.Market = &b

		in := olrs.Inputs{
			AvgHealth:    rec.HealthOrDefault(),
			Volatility:   bar.Volatility,
			Volume:       bar.Volume,
			MarketCapADA: bar.MarketCapADA.Float64,
		}
		if err := olrs.Validate(in); err != nil {
			result.Unscored = append(result.Unscored, i)
		} else {
			merged.OLRS = null.FloatFrom(score(in))
			result.Scored++
		}
		result.Records = append(result.Records, merged)
	}

	return result
}

// indexByDate keys bars by day, keeping the first bar for each day
func indexByDate(bars []domain.MarketDayBar) (map[string]domain.MarketDayBar, int) {
	index := make(map[string]domain.MarketDayBar, len(bars))
	duplicates := 0
	for _, b := range bars {
		key := b.DateKey()
		if _, seen := index[key]; seen {
			duplicates++
			continue
		}
		index[key] = b
	}
	return index, duplicates
}
