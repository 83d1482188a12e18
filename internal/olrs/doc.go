// Package olrs implements the Overall Liquidity/Risk Score (OLRS) for Cardano native tokens.
//
// OLRS blends four independently bounded risk components into a single score in [0, 100],
// where higher values mean higher risk.
//
// # Components
//
//  1. Health: piecewise-linear and inverted. Health below 1 scores 100, health of 4 or more
//     scores 0, and the band in between follows (4 - h) * 50 + 50 capped at 100.
//  2. Volatility: (v + v²) / 2 on the intraday range percentage, capped at 100.
//  3. Liquidity: (1 - min(volume / 200000, 1))² * 100, zero at or above the reference volume.
//  4. Market cap: ((10 - log10(max(mc, 1e6))) / 4) * 100, floored at 0.
//
// # Weights
//
// The components are blended with fixed weights that sum to exactly one:
//
//	Health     0.55
//	Volatility 0.15
//	Liquidity  0.20
//	MarketCap  0.10
//
// # Usage
//
//	in := olrs.Inputs{AvgHealth: 3, Volatility: 11.11, Volume: 500000, MarketCapADA: 2e6}
//	if err := olrs.Validate(in); err != nil {
//	    return err
//	}
//	score := olrs.Score(in) // 74.34
//
// Score never fails for finite input. Market caps at or below zero are floored at 1e6 before
// the logarithm, so they score as the riskiest market-cap bucket instead of failing.
package olrs
