package finmath

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSavingsRate(t *testing.T) {
	income := decimal.NewFromInt(5000)
	expenses := decimal.NewFromInt(3500)

	assert.InDelta(t, 30.0, SavingsRate(income, expenses), 0.0001)
}

func TestSavingsRateZeroIncome(t *testing.T) {
	assert.Equal(t, 0.0, SavingsRate(decimal.Zero, decimal.NewFromInt(100)))
	assert.Equal(t, 0.0, SavingsRate(decimal.NewFromInt(-50), decimal.NewFromInt(100)))
}

func TestSavingsRateNegativeWhenOverspent(t *testing.T) {
	income := decimal.NewFromInt(1000)
	expenses := decimal.NewFromInt(1500)

	assert.InDelta(t, -50.0, SavingsRate(income, expenses), 0.0001)
}

func TestPercentageOf(t *testing.T) {
	assert.InDelta(t, 75.0, PercentageOf(decimal.NewFromInt(300), decimal.NewFromInt(400)), 0.0001)
	assert.Equal(t, 0.0, PercentageOf(decimal.NewFromInt(300), decimal.Zero))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "1234.50", FormatMoney(decimal.NewFromFloat(1234.5)))
	assert.Equal(t, "0.00", FormatMoney(decimal.Zero))
}
