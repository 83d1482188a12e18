package domain

import (
	"time"

	"github.com/guregu/null/v5"
)

// MarketDayBar is one normalized daily bar for a token
type MarketDayBar struct {
	Date         time.Time  `json:"date"`           // UTC midnight of the bar's day
	Close        float64    `json:"close"`          // Closing price in ADA
	Volatility   float64    `json:"volatility"`     // Intraday range as a percentage of low
	Volume       float64    `json:"volume"`         // Traded volume
	MarketCapADA null.Float `json:"market_cap_ada"` // Close × circulating supply, null without supply
}

// DateKey returns the join key for the bar
func (b MarketDayBar) DateKey() string {
	return b.Date.Format(DateKeyLayout)
}

// HasMarketCap reports whether a market capitalization is attached to the bar
func (b MarketDayBar) HasMarketCap() bool {
	return b.MarketCapADA.Valid
}
