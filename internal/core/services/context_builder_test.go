package services_test

import (
	"testing"
	"time"

	"github.com/finsight-app/finsight_backend/internal/core/domain"
	"github.com/finsight-app/finsight_backend/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expense(category string, amount int64, date time.Time) domain.Transaction {
	return domain.Transaction{
		Category: category,
		Amount:   decimal.NewFromInt(amount),
		Type:     domain.Expense,
		Date:     date,
	}
}

func income(amount int64, date time.Time) domain.Transaction {
	return domain.Transaction{
		Category: "Income",
		Amount:   decimal.NewFromInt(amount),
		Type:     domain.Income,
		Date:     date,
	}
}

func TestBuildFinancialContext_Empty(t *testing.T) {
	fc := services.BuildFinancialContext(nil, nil)

	assert.True(t, fc.TotalIncome.IsZero())
	assert.True(t, fc.TotalExpenses.IsZero())
	assert.True(t, fc.NetIncome.IsZero())
	assert.Zero(t, fc.SavingsRate)
	assert.Empty(t, fc.CategoryBreakdown)
	assert.Empty(t, fc.RecentTransactions)
}

func TestBuildFinancialContext_IncomeOnly(t *testing.T) {
	now := time.Now()
	fc := services.BuildFinancialContext([]domain.Transaction{
		income(3000, now),
	}, nil)

	assert.True(t, fc.TotalIncome.Equal(decimal.NewFromInt(3000)))
	assert.True(t, fc.TotalExpenses.IsZero())
	assert.True(t, fc.NetIncome.Equal(decimal.NewFromInt(3000)))
	// No expenses means everything earned was saved.
	assert.Equal(t, 100.0, fc.SavingsRate)
	assert.Empty(t, fc.CategoryBreakdown)
}

func TestBuildFinancialContext_IncomeExcludedFromBreakdown(t *testing.T) {
	now := time.Now()
	fc := services.BuildFinancialContext([]domain.Transaction{
		income(5000, now),
		expense("Food", 800, now),
		expense("Transport", 200, now),
		expense("Food", 200, now),
	}, nil)

	assert.True(t, fc.TotalIncome.Equal(decimal.NewFromInt(5000)))
	assert.True(t, fc.TotalExpenses.Equal(decimal.NewFromInt(1200)))
	assert.True(t, fc.NetIncome.Equal(decimal.NewFromInt(3800)))
	assert.InDelta(t, 76.0, fc.SavingsRate, 0.0001)

	// Breakdown holds expense categories only, in encounter order, merged.
	require.Len(t, fc.CategoryBreakdown, 2)
	assert.Equal(t, "Food", fc.CategoryBreakdown[0].Category)
	assert.True(t, fc.CategoryBreakdown[0].Amount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, "Transport", fc.CategoryBreakdown[1].Category)
	assert.True(t, fc.CategoryBreakdown[1].Amount.Equal(decimal.NewFromInt(200)))
}

func TestBuildFinancialContext_NegativeSavingsRate(t *testing.T) {
	now := time.Now()
	fc := services.BuildFinancialContext([]domain.Transaction{
		income(1000, now),
		expense("Rent", 1500, now),
	}, nil)

	assert.True(t, fc.NetIncome.Equal(decimal.NewFromInt(-500)))
	assert.InDelta(t, -50.0, fc.SavingsRate, 0.0001)
}

func TestBuildFinancialContext_BudgetOverspend(t *testing.T) {
	now := time.Now()
	budgets := []domain.Budget{
		{Category: "Food", BudgetAmount: decimal.NewFromInt(100)},
	}
	fc := services.BuildFinancialContext([]domain.Transaction{
		expense("Food", 120, now),
	}, budgets)

	require.Len(t, fc.BudgetPerformances, 1)
	bp := fc.BudgetPerformances[0]
	assert.Equal(t, "Food", bp.Category)
	assert.True(t, bp.Spent.Equal(decimal.NewFromInt(120)))
	// Overspend reports above 100, never clamped.
	assert.InDelta(t, 120.0, bp.PercentageUsed, 0.0001)
}

func TestBuildFinancialContext_BudgetCategoryIsVerbatim(t *testing.T) {
	now := time.Now()
	budgets := []domain.Budget{
		{Category: "food", BudgetAmount: decimal.NewFromInt(100)},
	}
	fc := services.BuildFinancialContext([]domain.Transaction{
		expense("Food", 80, now),
	}, budgets)

	require.Len(t, fc.BudgetPerformances, 1)
	// "Food" does not match the "food" budget; no normalization happens.
	assert.True(t, fc.BudgetPerformances[0].Spent.IsZero())
	assert.Zero(t, fc.BudgetPerformances[0].PercentageUsed)
}

func TestBuildFinancialContext_RecentTransactionsCappedAndOrdered(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	txns := make([]domain.Transaction, 0, 15)
	for i := 0; i < 15; i++ {
		txns = append(txns, expense("Misc", int64(i+1), base.AddDate(0, 0, i)))
	}

	fc := services.BuildFinancialContext(txns, nil)

	require.Len(t, fc.RecentTransactions, 10)
	// Newest first.
	for i := 1; i < len(fc.RecentTransactions); i++ {
		assert.False(t, fc.RecentTransactions[i].Date.After(fc.RecentTransactions[i-1].Date))
	}
	assert.Equal(t, base.AddDate(0, 0, 14), fc.RecentTransactions[0].Date)
}

func TestTopCategories(t *testing.T) {
	fc := &domain.FinancialContext{
		CategoryBreakdown: []domain.CategorySpend{
			{Category: "Transport", Amount: decimal.NewFromInt(300)},
			{Category: "Food", Amount: decimal.NewFromInt(900)},
			{Category: "Fun", Amount: decimal.NewFromInt(300)},
		},
	}

	top := fc.TopCategories(2)
	require.Len(t, top, 2)
	assert.Equal(t, "Food", top[0].Category)
	// Ties keep encounter order: Transport was seen before Fun.
	assert.Equal(t, "Transport", top[1].Category)
}
