package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"travel-affiliate/internal/apperrors"
)

// Money amounts are stored with two fractional digits, the minor unit of
// every supported currency.
const moneyScale = 2

var hundred = decimal.NewFromInt(100)

// roundMoney rounds an amount to the currency minor unit (half away from zero)
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyScale)
}

// parseAmount parses a positive money amount from its string form
func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", apperrors.ErrValidation, s)
	}
	if amount.IsNegative() || amount.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	return roundMoney(amount), nil
}

// parseRate parses a percentage in the range [0, 100]
func parseRate(s string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid rate %q", apperrors.ErrValidation, s)
	}
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return decimal.Zero, fmt.Errorf("%w: rate must be between 0 and 100", apperrors.ErrValidation)
	}
	return rate, nil
}

// percentOf returns rate% of base, unrounded
func percentOf(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate).Div(hundred)
}
