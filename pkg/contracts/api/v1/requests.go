// Package api contains the request and response contracts of the scoring API.
// Version v1 represents the current stable API version.
package api

// ScoreRequest carries the four OLRS inputs for one day.
// Pointer fields distinguish an omitted value from zero.
type ScoreRequest struct {
	AvgHealth    *float64 `json:"avg_health" validate:"required,finite"`
	Volatility   *float64 `json:"volatility" validate:"required,finite,gte=0"`
	Volume       *float64 `json:"volume" validate:"required,finite,gte=0"`
	MarketCapADA *float64 `json:"market_cap_ada" validate:"required,finite"`
}

// TokenRequest identifies one entry of the token table
type TokenRequest struct {
	Symbol string `json:"symbol" param:"symbol" validate:"required,alphanum,max=16"`
}
