// Package http implements the HTTP handlers of the OLRS scoring API.
//
// Handlers stay thin: they decode and validate the request, call a service
// and render the result. Every failure is written as an RFC 7807 problem
// through the shared errors.ErrorHandler, carrying the request's trace ID.
//
// # Endpoints
//
//	POST /api/v1/olrs              score one set of inputs
//	GET  /api/v1/tokens            list the configured token table
//	GET  /api/v1/tokens/{symbol}   resolve one symbol to its unit
//	GET  /api/health               basic health
//	GET  /api/health/ready         readiness with dependency checks
//	GET  /api/health/live          liveness with runtime details
//	GET  /api/version              build information
//	GET  /metrics                  Prometheus exposition
package http
