// Package dataprocessing reads local health tables and condenses enriched
// records into per-token risk summaries.
//
// Health tables are CSV or XLSX files with a DATE column and an AVG_HEALTH
// column. Header names are matched case-insensitively and every other column
// is carried through untouched:
//
//	table, err := dataprocessing.LoadHealthTable("SNEK.csv")
//
// After a token has been merged and scored, the Summarizer reports its
// latest and mean OLRS along with its range and trailing scores:
//
//	s := dataprocessing.NewSummarizer(logger, dataprocessing.SummarizerConfig{})
//	summary := s.Summarize("SNEK", merged.Records)
//	err := s.Write(ctx, "summary.json", []dataprocessing.TokenSummary{summary})
package dataprocessing
