// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors. Intermediate
// calculations keep full precision; rounding happens only at the point of
// persistence or display via RoundMoney.
type Money = decimal.Decimal

// MoneyScale is the number of fractional digits stored for monetary values.
const MoneyScale = 2

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// RoundMoney rounds to MoneyScale fractional digits, half away from zero.
// All stored amounts in this system are non-negative, so this matches the
// half-up rule the document formats require.
func RoundMoney(m Money) Money {
	return m.Round(MoneyScale)
}

// Hundred is used for percent arithmetic (discount and tax rates).
var Hundred = decimal.NewFromInt(100)

// IsPercent reports whether p is a valid percentage in [0, 100].
func IsPercent(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(Hundred)
}
