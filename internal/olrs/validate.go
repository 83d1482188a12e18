package olrs

import (
	"fmt"
	"math"
)

// ValidationError describes an input that cannot be scored
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// Validate checks that every input is a finite number
func Validate(in Inputs) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"avg_health", in.AvgHealth},
		{"volatility", in.Volatility},
		{"volume", in.Volume},
		{"market_cap_ada", in.MarketCapADA},
	}

	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &ValidationError{
				Field:   f.name,
				Message: "must be a finite number",
				Value:   fmt.Sprint(f.value),
			}
		}
	}
	return nil
}
