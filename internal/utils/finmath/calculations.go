package finmath

import (
	"github.com/shopspring/decimal"
)

// NetIncome returns income minus expenses.
func NetIncome(totalIncome, totalExpenses decimal.Decimal) decimal.Decimal {
	return totalIncome.Sub(totalExpenses)
}

// SavingsRate returns the percentage of income retained after expenses.
// A non-positive income yields 0 rather than a division error.
func SavingsRate(totalIncome, totalExpenses decimal.Decimal) float64 {
	if totalIncome.Sign() <= 0 {
		return 0
	}
	rate, _ := totalIncome.Sub(totalExpenses).
		Div(totalIncome).
		Mul(decimal.NewFromInt(100)).
		Float64()
	return rate
}

// PercentageOf returns part as a percentage of whole, guarding zero and
// negative denominators.
func PercentageOf(part, whole decimal.Decimal) float64 {
	if whole.Sign() <= 0 {
		return 0
	}
	pct, _ := part.Div(whole).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

// FormatWithPrecision formats an amount rounded to the given number of
// decimal places. Example: 12.3456 with precision 2 returns "12.35".
func FormatWithPrecision(amount decimal.Decimal, precision int) string {
	return amount.Round(int32(precision)).String()
}

// FormatMoney renders an amount the way prompts and reports display it,
// rounded to cents. Example: 1234.5 returns "1234.50".
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
