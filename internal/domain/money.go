package domain

import "github.com/shopspring/decimal"

// Tolerances used when comparing caller-supplied sums.
var (
	AmountTolerance     = decimal.RequireFromString("0.01")
	PercentageTolerance = decimal.RequireFromString("0.01")
	LootShareTolerance  = decimal.RequireFromString("0.0001")
)

var hundred = decimal.NewFromInt(100)

// Round2 rounds d to two decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ToCents converts a currency amount to integer cents.
func ToCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// FromCents converts integer cents back to a currency amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// SumAmounts adds amounts without rounding.
func SumAmounts(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
