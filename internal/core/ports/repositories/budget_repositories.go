package repositories

import (
	"context"

	"github.com/finsight-app/finsight_backend/internal/core/domain"
)

// BudgetReader defines read operations for budget data
type BudgetReader interface {
	// FindBudgetByID retrieves a budget owned by userID.
	FindBudgetByID(ctx context.Context, userID, budgetID string) (*domain.Budget, error)

	// FindBudgetByCategory retrieves the user's budget for a verbatim
	// category name, if one exists.
	FindBudgetByCategory(ctx context.Context, userID, category string) (*domain.Budget, error)

	// ListBudgets returns a page of the user's budgets plus a token for the
	// next page ("" when done).
	ListBudgets(ctx context.Context, userID string, limit int, nextToken string) ([]domain.Budget, string, error)

	// ListAllBudgets returns every budget for the user.
	ListAllBudgets(ctx context.Context, userID string) ([]domain.Budget, error)
}

// BudgetWriter defines write operations for budget data
type BudgetWriter interface {
	// SaveBudget persists a new budget.
	SaveBudget(ctx context.Context, budget domain.Budget) error

	// UpdateBudget updates an existing budget owned by its UserID.
	UpdateBudget(ctx context.Context, budget domain.Budget) error

	// DeleteBudget removes a budget owned by userID.
	DeleteBudget(ctx context.Context, userID, budgetID string) error

	// RecomputeSpent refreshes the derived spent amount on every budget of
	// the user whose category matches an expense transaction.
	RecomputeSpent(ctx context.Context, userID string) error
}

// BudgetRepositoryFacade combines all budget repository interfaces.
type BudgetRepositoryFacade interface {
	BudgetReader
	BudgetWriter
}
