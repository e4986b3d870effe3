package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits kept for money amounts
// and percentages.
const MoneyScale = 2

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds d to MoneyScale digits, half away from zero
// (half-up on magnitude).
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// DivMoney divides a by b, rounding the quotient to MoneyScale digits.
// It returns zero when b is zero instead of faulting.
func DivMoney(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.DivRound(b, MoneyScale)
}

// PercentChange returns (current/base - 1) * 100 scaled to MoneyScale
// digits, or zero when base is zero.
func PercentChange(current, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	// Multiply before dividing so the only rounding happens on the result.
	return current.Sub(base).Mul(hundred).DivRound(base, MoneyScale)
}

// Amount multiplies a unit price by an integer quantity.
func Amount(unitPrice decimal.Decimal, quantity int64) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity))
}

// ParseAmount validates a caller-supplied money amount: it must be
// strictly positive and carry at most MoneyScale fractional digits.
func ParseAmount(field string, d decimal.Decimal) (decimal.Decimal, error) {
	if !d.IsPositive() {
		return decimal.Zero, &ValidationError{
			Message: fmt.Sprintf("%s must be > 0", field),
		}
	}
	if !d.Equal(d.Truncate(MoneyScale)) {
		return decimal.Zero, &ValidationError{
			Message: fmt.Sprintf("%s must have at most 2 decimal places", field),
		}
	}
	return d, nil
}

// WithinTolerance reports whether a and b differ by at most tol.
func WithinTolerance(a, b, tol decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tol)
}

// Cent is the smallest representable money amount.
var Cent = decimal.New(1, -MoneyScale)
