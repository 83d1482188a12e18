package domain

import (
	"strings"
)

// BatchItem pairs a token symbol with its local health table and the
// destination of the enriched table.
type BatchItem struct {
	Symbol string `json:"symbol" yaml:"symbol" validate:"required"`
	Input  string `json:"input" yaml:"input" validate:"required"`
	Output string `json:"output" yaml:"output" validate:"required"`
}

// NewBatchItem builds the conventional item for a symbol:
// <dir>/<SYM>.csv enriched into <dir>/<SYM>_with_OLRS.csv.
func NewBatchItem(dir, symbol string) BatchItem {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	prefix := symbol
	if dir != "" {
		prefix = strings.TrimRight(dir, "/") + "/" + symbol
	}
	return BatchItem{
		Symbol: symbol,
		Input:  prefix + ".csv",
		Output: prefix + "_with_OLRS.csv",
	}
}

// ItemStatus is the terminal state of a batch item
type ItemStatus string

const (
	ItemCompleted ItemStatus = "completed"
	ItemSkipped   ItemStatus = "skipped"
	ItemFailed    ItemStatus = "failed"
)
