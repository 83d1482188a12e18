// Package shared holds code used across packages that belongs to no single
// layer.
//
// The testutil subpackage provides a fixture market data API and an in-memory
// slog handler with log assertions:
//
//	api := testutil.NewMarketAPI(t)
//	api.SetBars(unit, testutil.Bar{Day: "2024-01-01", Close: 2})
//	logger, handler := testutil.NewTestLogger(t)
package shared
