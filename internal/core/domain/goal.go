package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a savings target the user tracks progress against.
type Goal struct {
	GoalID        string          `json:"goalID"` // Primary Key (UUID)
	UserID        string          `json:"userID"` // Owner (Not Null)
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	TargetDate    *time.Time      `json:"targetDate,omitempty"`
	AuditFields
}

// PercentageComplete returns current/target*100 with a zero-target guard.
func (g Goal) PercentageComplete() float64 {
	if g.TargetAmount.Sign() <= 0 {
		return 0
	}
	pct, _ := g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}
