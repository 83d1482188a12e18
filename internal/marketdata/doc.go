// Package marketdata is the gateway to the token market data API.
//
// It fetches daily OHLCV bars and circulating supply for a token unit.
// Absence is a value: every call returns a Result whose Failure, when set,
// carries a typed reason (transport, timeout, status, malformed, empty,
// missing_field). Calls make a single bounded-timeout attempt and never retry.
//
// Usage:
//
//	client := marketdata.NewClientFromConfig(cfg.API,
//	    marketdata.WithLogger(logger),
//	    marketdata.WithRecorder(metrics))
//
//	bars := client.FetchBars(ctx, unit, "1d", 180)
//	if !bars.OK() {
//	    logger.Warn("no market data", "reason", bars.Failure.Reason)
//	}
package marketdata
