package exporter

import (
	"strconv"

	"github.com/guregu/null/v5"
)

// formatFloat renders the shortest decimal that round-trips to f
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatNullFloat renders a null value as an empty cell
func formatNullFloat(f null.Float) string {
	if !f.Valid {
		return ""
	}
	return formatFloat(f.Float64)
}
