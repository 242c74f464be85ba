package dto

import (
	"time"

	"github.com/finsight-app/finsight_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBudgetRequest defines the data needed to create a budget.
// The spent amount is derived from transactions and cannot be supplied.
type CreateBudgetRequest struct {
	Category     string              `json:"category" binding:"required"`
	BudgetAmount decimal.Decimal     `json:"budgetAmount" binding:"required,decimalpositive"`
	Period       domain.BudgetPeriod `json:"period" binding:"required,oneof=weekly monthly yearly"`
}

// UpdateBudgetRequest defines the data allowed for updating a budget.
type UpdateBudgetRequest struct {
	Category     *string              `json:"category"`
	BudgetAmount *decimal.Decimal     `json:"budgetAmount" binding:"omitempty,decimalpositive"`
	Period       *domain.BudgetPeriod `json:"period" binding:"omitempty,oneof=weekly monthly yearly"`
}

// ListBudgetsRequest defines query parameters for listing budgets.
type ListBudgetsRequest struct {
	Limit     int    `form:"limit,default=20"`
	NextToken string `form:"nextToken"`
}

// BudgetResponse defines the data returned for a budget.
// Mirrors domain.Budget, with the usage percentage precomputed.
type BudgetResponse struct {
	BudgetID       string              `json:"budgetID"`
	Category       string              `json:"category"`
	BudgetAmount   decimal.Decimal     `json:"budgetAmount"`
	SpentAmount    decimal.Decimal     `json:"spentAmount"`
	PercentageUsed float64             `json:"percentageUsed"`
	Period         domain.BudgetPeriod `json:"period"`
	CreatedAt      time.Time           `json:"createdAt"`
	LastUpdatedAt  time.Time           `json:"lastUpdatedAt"`
}

// ListBudgetsResponse wraps a page of budgets.
type ListBudgetsResponse struct {
	Budgets   []BudgetResponse `json:"budgets"`
	NextToken string           `json:"nextToken,omitempty"`
}

// ToBudgetResponse converts a domain.Budget to BudgetResponse DTO
func ToBudgetResponse(budget *domain.Budget) BudgetResponse {
	return BudgetResponse{
		BudgetID:       budget.BudgetID,
		Category:       budget.Category,
		BudgetAmount:   budget.BudgetAmount,
		SpentAmount:    budget.SpentAmount,
		PercentageUsed: budget.PercentageUsed(),
		Period:         budget.Period,
		CreatedAt:      budget.CreatedAt,
		LastUpdatedAt:  budget.LastUpdatedAt,
	}
}

// ToListBudgetsResponse converts a page of domain budgets to the list DTO
func ToListBudgetsResponse(budgets []domain.Budget, nextToken string) ListBudgetsResponse {
	res := make([]BudgetResponse, len(budgets))
	for i, budget := range budgets {
		res[i] = ToBudgetResponse(&budget)
	}
	return ListBudgetsResponse{
		Budgets:   res,
		NextToken: nextToken,
	}
}
