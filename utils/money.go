package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Percent returns part/whole as a percentage rounded to 2 decimal places.
// A non-positive whole yields 0 rather than a division error.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.Sign() <= 0 {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}

// FromCents converts an integer minor-unit amount (e.g. a gateway's cent
// value) into an exact decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Round2 rounds x to 2 decimal places (banking-style simple round).
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
