package domain

import (
	"time"

	"github.com/guregu/null/v5"
)

// DefaultAvgHealth is the health value assumed when a row carries none
const DefaultAvgHealth = 1.0

// DateKeyLayout is the layout used to key records by calendar day
const DateKeyLayout = "2006-01-02"

// Canonical column names of a health table
const (
	ColumnDate      = "DATE"
	ColumnAvgHealth = "AVG_HEALTH"
)

// Field is one cell of an input row, keyed by its canonical column name
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LocalHealthRecord represents one row of a per-token health table.
// Records are never mutated after loading.
type LocalHealthRecord struct {
	Row       int        `json:"row"`        // 1-based data row index within the source table
	Date      time.Time  `json:"date"`       // Calendar day at UTC midnight, zero when DateValid is false
	DateValid bool       `json:"date_valid"` // False when the DATE cell could not be parsed
	AvgHealth null.Float `json:"avg_health"` // AVG_HEALTH, null when absent or unparseable
	Fields    []Field    `json:"fields"`     // Every input column in input order
}

// DateKey returns the join key for the record, or "" when its date is invalid
func (r LocalHealthRecord) DateKey() string {
	if !r.DateValid {
		return ""
	}
	return r.Date.Format(DateKeyLayout)
}

// HealthOrDefault returns the record's health value, falling back to DefaultAvgHealth
func (r LocalHealthRecord) HealthOrDefault() float64 {
	if r.AvgHealth.Valid {
		return r.AvgHealth.Float64
	}
	return DefaultAvgHealth
}

// Get returns the raw value of a column by canonical name
func (r LocalHealthRecord) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}
