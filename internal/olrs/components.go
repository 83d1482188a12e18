package olrs

import (
	"math"
)

// Component bounds and calibration constants
const (
	MinComponent = 0.0
	MaxComponent = 100.0

	HealthFloor   = 1.0  // Below this health the component is at maximum risk
	HealthCeiling = 4.0  // At or above this health the component carries no risk
	HealthSlope   = 50.0 // Risk added per unit of health below the ceiling
	HealthOffset  = 50.0

	LiquidityReferenceVolume = 200_000.0 // Volume at which liquidity risk reaches zero

	MarketCapFloor      = 1e6  // Smallest market cap fed to the logarithm
	MarketCapCeilingLog = 10.0 // log10 of the market cap with zero risk
	MarketCapLogSpan    = 4.0  // Orders of magnitude between full and zero risk
)

// HealthRisk converts an average health score into a risk component.
// Higher health means lower risk.
func HealthRisk(avgHealth float64) float64 {
	switch {
	case avgHealth < HealthFloor:
		return MaxComponent
	case avgHealth >= HealthCeiling:
		return MinComponent
	default:
		return clampComponent(math.Min(MaxComponent, (HealthCeiling-avgHealth)*HealthSlope+HealthOffset))
	}
}

// VolatilityRisk applies a superlinear penalty to a percentage volatility
func VolatilityRisk(volatility float64) float64 {
	return clampComponent(math.Min((volatility+volatility*volatility)/2, MaxComponent))
}

// LiquidityRisk penalizes traded volume below the reference volume quadratically
func LiquidityRisk(volume float64) float64 {
	shortfall := 1 - math.Min(volume/LiquidityReferenceVolume, 1)
	return clampComponent(shortfall * shortfall * 100)
}

// MarketCapRisk scores market capitalization on a log scale.
// Caps at or below MarketCapFloor, including zero and negative caps, score 100.
func MarketCapRisk(marketCapADA float64) float64 {
	logCap := math.Log10(math.Max(marketCapADA, MarketCapFloor))
	return clampComponent(math.Max((MarketCapCeilingLog-logCap)/MarketCapLogSpan*100, MinComponent))
}

// clampComponent bounds a component to [MinComponent, MaxComponent]. NaN passes through.
func clampComponent(v float64) float64 {
	if v < MinComponent {
		return MinComponent
	}
	if v > MaxComponent {
		return MaxComponent
	}
	return v
}
