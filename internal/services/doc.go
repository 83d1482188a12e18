// Package services implements the business logic layer of the token risk
// application. It sits between the entry points (the batch binary and the HTTP
// handlers) and the pure building blocks (loader, gateway, normalizer, merger,
// scorer, exporter).
//
// # Available Services
//
//	- EnrichmentService: enriches one local health table with market data and OLRS scores
//	- BatchService: runs every configured item with bounded parallelism
//	- ScoreService: computes a single OLRS score with its component breakdown
//	- HealthService: health, readiness and version information
//
// # Item Isolation
//
// ProcessItem never returns an error. Every outcome is an ItemReport whose
// Status is completed, skipped (no market data, output left unchanged) or
// failed. BatchService collects the reports in configured order:
//
//	enrich := services.NewEnrichmentService(client, cfg.Tokens, logger,
//	    services.WithItemRecorder(telemetry.Metrics))
//	report := services.NewBatchService(enrich, cfg.Batch.Workers, logger).
//	    Run(ctx, cfg.ResolvedItems())
//	os.Exit(report.ExitCode())
//
// # Logging
//
// Each item runs under its own trace ID stored in the context, so every log
// line written with the *Context slog methods carries trace_id.
package services
