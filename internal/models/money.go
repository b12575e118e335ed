package models

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var maxMinor = decimal.NewFromInt(math.MaxInt64)

// ParseAmount converts a major-unit string such as "5,000.50" into minor units
// (kobo, or cents for USD). Non-numeric, non-positive and sub-minor-unit values
// are rejected with ErrInvalidAmount, as is anything past the int64 range.
func ParseAmount(s string) (int64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if clean == "" {
		return 0, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, ErrInvalidAmount
	}

	minor := d.Shift(2)
	if !minor.IsInteger() || !minor.IsPositive() || minor.GreaterThan(maxMinor) {
		return 0, ErrInvalidAmount
	}
	return minor.IntPart(), nil
}

// MustNaira converts a literal naira string to kobo; it panics on bad input
// and is only meant for static catalog data.
func MustNaira(s string) int64 {
	v, err := ParseAmount(s)
	if err != nil {
		panic("invalid naira literal " + s)
	}
	return v
}

// FormatMinor renders minor units back to a plain major-unit string ("5000.5" for 500050)
func FormatMinor(v int64) string {
	return decimal.New(v, -2).String()
}
