package marketdata

import (
	"fmt"
)

// FailureReason classifies why a gateway call produced no value
type FailureReason string

const (
	ReasonTransport    FailureReason = "transport"
	ReasonTimeout      FailureReason = "timeout"
	ReasonStatus       FailureReason = "status"
	ReasonMalformed    FailureReason = "malformed"
	ReasonEmpty        FailureReason = "empty"
	ReasonMissingField FailureReason = "missing_field"
)

// Gateway operations, used in logs and metric labels
const (
	OpOHLCV     = "ohlcv"
	OpMarketCap = "mcap"
)

// Failure describes an absent gateway result
type Failure struct {
	Reason     FailureReason
	Op         string
	StatusCode int
	Err        error
}

// Error implements the error interface
func (f *Failure) Error() string {
	msg := fmt.Sprintf("%s: %s", f.Op, f.Reason)
	if f.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, f.StatusCode)
	}
	if f.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, f.Err)
	}
	return msg
}

// Unwrap returns the underlying error
func (f *Failure) Unwrap() error {
	return f.Err
}

// Result holds either a value or the reason it is absent
type Result[T any] struct {
	Value   T
	Failure *Failure
}

// Present wraps a value
func Present[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Absent wraps a failure
func Absent[T any](f *Failure) Result[T] {
	return Result[T]{Failure: f}
}

// OK reports whether the value is present
func (r Result[T]) OK() bool {
	return r.Failure == nil
}

// Get returns the value and whether it is present
func (r Result[T]) Get() (T, bool) {
	return r.Value, r.Failure == nil
}
