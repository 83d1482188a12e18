package olrs

import (
	"math"
)

// weightTolerance bounds floating point drift when checking that weights sum to one
const weightTolerance = 1e-9

// Weights holds the blend weight of each risk component
type Weights struct {
	Health     float64 `json:"health"`
	Volatility float64 `json:"volatility"`
	Liquidity  float64 `json:"liquidity"`
	MarketCap  float64 `json:"market_cap"`
}

// DefaultWeights returns the fixed OLRS weights
func DefaultWeights() Weights {
	return Weights{
		Health:     0.55,
		Volatility: 0.15,
		Liquidity:  0.20,
		MarketCap:  0.10,
	}
}

// Sum returns the total of all weights
func (w Weights) Sum() float64 {
	return w.Health + w.Volatility + w.Liquidity + w.MarketCap
}

// IsValid checks that every weight is non-negative and the weights sum to one
func (w Weights) IsValid() bool {
	return w.Health >= 0 && w.Volatility >= 0 && w.Liquidity >= 0 && w.MarketCap >= 0 &&
		math.Abs(w.Sum()-1) <= weightTolerance
}

// Blend returns the weighted sum of the components, unrounded
func (w Weights) Blend(c Components) float64 {
	return w.Health*c.Health +
		w.Volatility*c.Volatility +
		w.Liquidity*c.Liquidity +
		w.MarketCap*c.MarketCap
}
