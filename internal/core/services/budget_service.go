package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finsight-app/finsight_backend/internal/apperrors"
	"github.com/finsight-app/finsight_backend/internal/core/domain"
	portsrepo "github.com/finsight-app/finsight_backend/internal/core/ports/repositories"
	portssvc "github.com/finsight-app/finsight_backend/internal/core/ports/services"
	"github.com/finsight-app/finsight_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// budgetService implements the BudgetSvcFacade interface
type budgetService struct {
	BaseService
	budgetRepo portsrepo.BudgetRepositoryFacade
	txnRepo    portsrepo.TransactionReader
}

// NewBudgetService creates a new budget service. The transaction reader
// seeds the derived spent amount when a budget is created or recategorized.
func NewBudgetService(budgetRepo portsrepo.BudgetRepositoryFacade, txnRepo portsrepo.TransactionReader) portssvc.BudgetSvcFacade {
	return &budgetService{
		budgetRepo: budgetRepo,
		txnRepo:    txnRepo,
	}
}

// Ensure budgetService implements the BudgetSvcFacade interface
var _ portssvc.BudgetSvcFacade = (*budgetService)(nil)

func (s *budgetService) CreateBudget(ctx context.Context, userID string, req dto.CreateBudgetRequest) (*domain.Budget, error) {
	if req.BudgetAmount.Sign() <= 0 {
		return nil, fmt.Errorf("budget amount must be positive: %w", apperrors.ErrValidation)
	}

	// Seed spent from existing expense transactions in this category.
	spent, err := s.txnRepo.SumExpensesByCategory(ctx, userID, req.Category)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute spent amount for new budget", slog.String("category", req.Category))
		spent = decimal.Zero
	}

	now := time.Now()
	budget := domain.Budget{
		BudgetID:     uuid.NewString(),
		UserID:       userID,
		Category:     req.Category,
		BudgetAmount: req.BudgetAmount,
		SpentAmount:  spent,
		Period:       req.Period,
		AuditFields:  domain.NewAuditFields(userID, now),
	}

	if err := s.budgetRepo.SaveBudget(ctx, budget); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to create budget", slog.String("category", req.Category))
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}

	return &budget, nil
}

func (s *budgetService) GetBudgetByID(ctx context.Context, userID, budgetID string) (*domain.Budget, error) {
	budget, err := s.budgetRepo.FindBudgetByID(ctx, userID, budgetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to get budget", slog.String("budget_id", budgetID))
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return budget, nil
}

func (s *budgetService) ListBudgets(ctx context.Context, userID string, limit int, nextToken string) ([]domain.Budget, string, error) {
	budgets, token, err := s.budgetRepo.ListBudgets(ctx, userID, limit, nextToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			return nil, "", err
		}
		s.LogError(ctx, err, "Failed to list budgets", slog.String("user_id", userID))
		return nil, "", fmt.Errorf("failed to list budgets: %w", err)
	}
	return budgets, token, nil
}

func (s *budgetService) UpdateBudget(ctx context.Context, userID, budgetID string, req dto.UpdateBudgetRequest) (*domain.Budget, error) {
	budget, err := s.budgetRepo.FindBudgetByID(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}

	recategorized := false
	if req.Category != nil && *req.Category != budget.Category {
		budget.Category = *req.Category
		recategorized = true
	}
	if req.BudgetAmount != nil {
		if req.BudgetAmount.Sign() <= 0 {
			return nil, fmt.Errorf("budget amount must be positive: %w", apperrors.ErrValidation)
		}
		budget.BudgetAmount = *req.BudgetAmount
	}
	if req.Period != nil {
		budget.Period = *req.Period
	}
	budget.Touch(userID, time.Now())

	if err := s.budgetRepo.UpdateBudget(ctx, *budget); err != nil {
		s.LogError(ctx, err, "Failed to update budget", slog.String("budget_id", budgetID))
		return nil, err
	}

	// A category change invalidates the derived spent amount.
	if recategorized {
		if err := s.budgetRepo.RecomputeSpent(ctx, userID); err != nil {
			s.LogWarn(ctx, "Failed to recompute budget spent amounts", slog.String("user_id", userID), slog.String("error", err.Error()))
		}
		budget, err = s.budgetRepo.FindBudgetByID(ctx, userID, budgetID)
		if err != nil {
			return nil, err
		}
	}

	return budget, nil
}

func (s *budgetService) DeleteBudget(ctx context.Context, userID, budgetID string) error {
	if err := s.budgetRepo.DeleteBudget(ctx, userID, budgetID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		s.LogError(ctx, err, "Failed to delete budget", slog.String("budget_id", budgetID))
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return nil
}
