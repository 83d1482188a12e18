// Package files discovers per-token health tables on disk.
//
// A data directory holds one table per token named after its symbol, for
// example SNEK.csv or HUNT.xlsx. Enriched outputs (SNEK_with_OLRS.csv) are
// ignored so that re-running discovery over the same directory is stable.
package files
