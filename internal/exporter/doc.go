// Package exporter writes enriched token tables.
//
// CSVWriter is the low-level writer: headers plus string rows, optional UTF-8
// BOM, written to a temporary file and renamed into place so a failed export
// never leaves a partial table behind.
//
// MergedTable renders merged records as the output table: the input columns
// in input order followed by close, volatility, volume, market_cap_ada and olrs.
// WriteMerged picks CSV or XLSX output from the file extension.
//
// Example usage:
//
//	table := exporter.NewMergedTable(health.Columns, result.Records)
//	if err := exporter.NewCSVWriter(logger).WriteMerged("data/SNEK_with_OLRS.csv", table); err != nil {
//	    return err
//	}
package exporter
