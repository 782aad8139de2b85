package features

import (
	"errors"
	"fmt"
)

// Sentinel kinds for encoding errors. These allow errors.Is/As from callers.
var (
	ErrInvalidCategory = errors.New("invalid category")
	ErrOutOfRange      = errors.New("value out of range")
	ErrSchemaMismatch  = errors.New("feature schema mismatch")
)

// CategoryError reports a categorical value outside its closed enumeration.
type CategoryError struct {
	Field string
	Value string
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("%s: %q is not a known %s", ErrInvalidCategory, e.Value, e.Field)
}

func (e *CategoryError) Unwrap() error { return ErrInvalidCategory }

// RangeError reports a numeric value outside its declared bounds.
type RangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64 // +Inf when unbounded
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: %s=%g not in [%g, %g]", ErrOutOfRange, e.Field, e.Value, e.Min, e.Max)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }
