// Package app wires the OLRS scoring API server: services, the chi router
// with its middleware chain, and the HTTP server lifecycle.
//
// The middleware order is RequestID, RealIP, OTel, StructuredLogger,
// Recoverer, SecurityHeaders and the optional rate limiter. /metrics is
// mounted before the instrumented group.
//
// # Usage
//
//	a, err := app.NewApplication(cfg, logger, telemetry)
//	if err != nil {
//	    return err
//	}
//	return a.Run(ctx)
package app
