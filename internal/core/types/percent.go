package types

import (
	"github.com/shopspring/decimal"
)

// Percent is a percentage value (0-100) with full decimal precision.
// Wastage percentages stay numeric internally; formatting to the
// two-decimal string the frontend expects happens only in DTOs.
type Percent = decimal.Decimal

// NewPercentFromFloat creates a Percent from a float.
func NewPercentFromFloat(f float64) Percent {
	return decimal.NewFromFloat(f)
}

// NewPercentFromString creates a Percent from a string.
func NewPercentFromString(s string) (Percent, error) {
	return decimal.NewFromString(s)
}

// MustPercent creates a Percent from a string, panics on error.
// Use only for constants and tests.
func MustPercent(s string) Percent {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ZeroPercent returns the zero percentage.
func ZeroPercent() Percent {
	return decimal.Zero
}

// ValidPercent reports whether p lies in the closed interval [0, 100].
func ValidPercent(p Percent) bool {
	return !p.IsNegative() && p.LessThanOrEqual(decimal.NewFromInt(100))
}

var hundred = decimal.NewFromInt(100)

// ApplyPercent returns q × p / 100 as a Quantity, rounded to the
// quantity scale (half up).
func ApplyPercent(q Quantity, p Percent) Quantity {
	scaled := decimal.NewFromInt(q.Int64Scaled()).Mul(p).Div(hundred)
	return Quantity(scaled.Round(0).IntPart())
}

// PercentOf returns part / whole × 100. Division by a zero whole is the
// caller's responsibility to avoid; returns zero in that case.
func PercentOf(part, whole Quantity) Percent {
	if whole.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromInt(part.Int64Scaled()).
		Mul(hundred).
		Div(decimal.NewFromInt(whole.Int64Scaled()))
}

// FormatPercent renders a percentage with exactly two decimal places,
// e.g. "5.00". This is the presentation-boundary format.
func FormatPercent(p Percent) string {
	return p.StringFixed(2)
}
