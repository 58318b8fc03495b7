// Package input turns raw text form values into typed values.
//
// Every helper either returns the parsed value or a *ValidationError naming the
// offending field; the underlying parse error is kept and reachable through
// errors.Unwrap.
package input

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ValidationError reports malformed or missing input for a single field.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid builds a ValidationError without an underlying cause.
func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Required trims s and fails when nothing is left or when s contains
// control characters such as line breaks.
func Required(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", Invalid(field, "required")
	}
	if err := SingleLine(field, s); err != nil {
		return "", err
	}
	return s, nil
}

// SingleLine fails when s contains control characters. Names end up as
// lines of the text report.
func SingleLine(field, s string) error {
	if strings.ContainsFunc(s, unicode.IsControl) {
		return Invalid(field, "must not contain control characters")
	}
	return nil
}

// Int parses a base-10 integer.
func Int(field, s string) (int64, error) {
	s, err := Required(field, s)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &ValidationError{Field: field, Reason: "must be an integer", Err: err}
	}
	return v, nil
}

// MaxQuantity is the largest quantity an INTEGER column holds.
const MaxQuantity = 1<<31 - 1

func boundedInt(field, s string, min int64, reason string) (int, error) {
	v, err := Int(field, s)
	if err != nil {
		return 0, err
	}
	if v < min {
		return 0, Invalid(field, reason)
	}
	if v > MaxQuantity {
		return 0, Invalid(field, "too large")
	}
	return int(v), nil
}

// NonNegativeInt parses an integer that must be >= 0.
func NonNegativeInt(field, s string) (int, error) {
	return boundedInt(field, s, 0, "must not be negative")
}

// PositiveInt parses an integer that must be > 0.
func PositiveInt(field, s string) (int, error) {
	return boundedInt(field, s, 1, "must be greater than 0")
}

// Prices are stored as NUMERIC(12,2).
const priceScale = 2

var maxPrice = decimal.New(1, 12-priceScale)

// Price checks that d is a non-negative amount the store keeps exactly: at
// most two fractional digits and below 10^10.
func Price(field string, d decimal.Decimal) error {
	switch {
	case d.IsNegative():
		return Invalid(field, "must not be negative")
	case !d.Equal(d.Truncate(priceScale)):
		return Invalid(field, "must have at most 2 decimal places")
	case d.GreaterThanOrEqual(maxPrice):
		return Invalid(field, "too large")
	}
	return nil
}

// NonNegativeDecimal parses a price. A comma is accepted as the decimal
// separator; see Price for the accepted range.
func NonNegativeDecimal(field, s string) (decimal.Decimal, error) {
	s, err := Required(field, s)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Reason: "must be a number", Err: err}
	}
	if err := Price(field, d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}
