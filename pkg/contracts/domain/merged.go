package domain

import (
	"github.com/guregu/null/v5"
)

// Market column names appended to enriched output tables, in output order
const (
	ColumnClose        = "close"
	ColumnVolatility   = "volatility"
	ColumnVolume       = "volume"
	ColumnMarketCapADA = "market_cap_ada"
	ColumnOLRS         = "olrs"
)

// MarketColumns lists the appended output columns in order
var MarketColumns = []string{
	ColumnClose,
	ColumnVolatility,
	ColumnVolume,
	ColumnMarketCapADA,
	ColumnOLRS,
}

// MergedRecord is a local health record joined with its market day, if any.
// Market is nil for passthrough rows; OLRS is only valid when Market is set.
type MergedRecord struct {
	Local  LocalHealthRecord `json:"local"`
	Market *MarketDayBar     `json:"market,omitempty"`
	OLRS   null.Float        `json:"olrs"`
}

// Enriched reports whether market fields are attached to the record
func (m MergedRecord) Enriched() bool {
	return m.Market != nil
}

// Scored reports whether an OLRS value is attached to the record
func (m MergedRecord) Scored() bool {
	return m.Market != nil && m.OLRS.Valid
}
