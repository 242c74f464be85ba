package domain

import "github.com/shopspring/decimal"

// BudgetPeriod is the recurrence window a budget applies to.
type BudgetPeriod string

const (
	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodMonthly BudgetPeriod = "monthly"
	PeriodYearly  BudgetPeriod = "yearly"
)

// Budget caps spending for one category over a period. SpentAmount is
// derived: it is recomputed from the matching expense transactions on every
// transaction write, never patched incrementally, so it cannot drift.
type Budget struct {
	BudgetID     string          `json:"budgetID"` // Primary Key (UUID)
	UserID       string          `json:"userID"`   // Owner (Not Null)
	Category     string          `json:"category"`
	BudgetAmount decimal.Decimal `json:"budgetAmount"`
	SpentAmount  decimal.Decimal `json:"spentAmount"` // Derived, see above
	Period       BudgetPeriod    `json:"period"`
	AuditFields
}

// PercentageUsed returns spent/budgeted*100, guarding division by zero:
// a non-positive budget amount yields 0, never NaN or Inf.
func (b Budget) PercentageUsed() float64 {
	if b.BudgetAmount.Sign() <= 0 {
		return 0
	}
	pct, _ := b.SpentAmount.Div(b.BudgetAmount).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}
