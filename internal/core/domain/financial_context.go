package domain

import "github.com/shopspring/decimal"

// CategorySpend is one category's summed expense amount.
type CategorySpend struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// BudgetPerformance is the derived utilization of one budget.
type BudgetPerformance struct {
	Category       string          `json:"category"`
	Budgeted       decimal.Decimal `json:"budgeted"`
	Spent          decimal.Decimal `json:"spent"`
	PercentageUsed float64         `json:"percentageUsed"`
}

// FinancialContext is the derived aggregate fed into AI prompts. It is built
// fresh per request from the caller's already-scoped records and discarded
// once the response is sent; nothing here is persisted or cached.
type FinancialContext struct {
	Transactions       []Transaction       `json:"transactions"`
	Budgets            []Budget            `json:"budgets"`
	TotalIncome        decimal.Decimal     `json:"totalIncome"`
	TotalExpenses      decimal.Decimal     `json:"totalExpenses"`
	NetIncome          decimal.Decimal     `json:"netIncome"`
	SavingsRate        float64             `json:"savingsRate"` // percent, 0 when income is 0
	CategoryBreakdown  []CategorySpend     `json:"categoryBreakdown"` // expenses only, encounter order
	RecentTransactions []Transaction       `json:"recentTransactions"` // newest 10
	BudgetPerformances []BudgetPerformance `json:"budgetPerformance"`
}

// TopCategories returns up to n categories ordered by spend descending.
// The sort is stable: equal amounts keep their encounter order.
func (fc *FinancialContext) TopCategories(n int) []CategorySpend {
	out := make([]CategorySpend, len(fc.CategoryBreakdown))
	copy(out, fc.CategoryBreakdown)
	// insertion sort keeps equal elements in encounter order
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Amount.GreaterThan(out[j-1].Amount); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}
