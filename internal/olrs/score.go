package olrs

import (
	"math"
	"math/big"
)

// ScorePrecision is the number of decimal places kept in a final score
const ScorePrecision = 2

// Inputs are the per-day values an OLRS score is computed from
type Inputs struct {
	AvgHealth    float64 `json:"avg_health"`
	Volatility   float64 `json:"volatility"`
	Volume       float64 `json:"volume"`
	MarketCapADA float64 `json:"market_cap_ada"`
}

// Components holds each bounded risk component before weighting
type Components struct {
	Health     float64 `json:"health"`
	Volatility float64 `json:"volatility"`
	Liquidity  float64 `json:"liquidity"`
	MarketCap  float64 `json:"market_cap"`
}

// Breakdown computes the four risk components for the given inputs
func Breakdown(in Inputs) Components {
	return Components{
		Health:     HealthRisk(in.AvgHealth),
		Volatility: VolatilityRisk(in.Volatility),
		Liquidity:  LiquidityRisk(in.Volume),
		MarketCap:  MarketCapRisk(in.MarketCapADA),
	}
}

// Score computes the OLRS for the given inputs, rounded to ScorePrecision places.
// NaN inputs yield NaN; use Validate to reject them first.
func Score(in Inputs) float64 {
	return Round(DefaultWeights().Blend(Breakdown(in)))
}

// Round rounds a score half-to-even at ScorePrecision decimal places. The
// exact binary value of v is rounded, so 2.675 (stored as 2.67499...) gives 2.67.
func Round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}

	// 256 bits hold v × 10^ScorePrecision without loss
	scaled := new(big.Float).SetPrec(256).SetFloat64(v)
	scaled.Mul(scaled, new(big.Float).SetPrec(256).SetFloat64(math.Pow10(ScorePrecision)))

	units, _ := scaled.Int(nil)
	frac := new(big.Float).SetPrec(256).Sub(scaled, new(big.Float).SetPrec(256).SetInt(units))
	frac.Abs(frac)

	switch frac.Cmp(big.NewFloat(0.5)) {
	case 1:
		units.Add(units, big.NewInt(int64(scaled.Sign())))
	case 0:
		if units.Bit(0) == 1 {
			units.Add(units, big.NewInt(int64(scaled.Sign())))
		}
	}

	f, _ := new(big.Float).SetInt(units).Float64()
	return f / math.Pow10(ScorePrecision)
}
