package models

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// CurrencyExponent is the number of minor-unit digits of the base currency.
const CurrencyExponent = 2

var maxAmount = decimal.New(math.MaxInt64, -CurrencyExponent)

// ParseAmount parses a decimal string such as "250.00".
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// ToCents converts a decimal amount into minor units. It fails when the amount
// has sub-cent precision or does not fit in an int64.
func ToCents(d decimal.Decimal) (int64, error) {
	if !d.Equal(d.Round(CurrencyExponent)) {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", d.String(), CurrencyExponent)
	}
	if d.Abs().GreaterThan(maxAmount) {
		return 0, fmt.Errorf("amount %s is too large", d.String())
	}
	return d.Shift(CurrencyExponent).IntPart(), nil
}

// FromCents converts minor units into a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -CurrencyExponent)
}

// FormatCents renders minor units with exactly two decimals, e.g. 125000 -> "1250.00".
func FormatCents(cents int64) string {
	return FromCents(cents).StringFixed(CurrencyExponent)
}
