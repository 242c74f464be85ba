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
)

const defaultCurrencyCode = "USD"

// transactionService implements the TransactionSvcFacade interface
type transactionService struct {
	BaseService
	txnRepo    portsrepo.TransactionRepositoryFacade
	budgetRepo portsrepo.BudgetRepositoryFacade
}

// NewTransactionService creates a new transaction service. The budget
// repository is needed to refresh derived spent amounts after writes.
func NewTransactionService(txnRepo portsrepo.TransactionRepositoryFacade, budgetRepo portsrepo.BudgetRepositoryFacade) portssvc.TransactionSvcFacade {
	return &transactionService{
		txnRepo:    txnRepo,
		budgetRepo: budgetRepo,
	}
}

// Ensure transactionService implements the TransactionSvcFacade interface
var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

func (s *transactionService) CreateTransaction(ctx context.Context, userID string, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	if req.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", apperrors.ErrValidation)
	}

	currency := req.CurrencyCode
	if currency == "" {
		currency = defaultCurrencyCode
	}

	now := time.Now()
	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		UserID:        userID,
		Date:          req.Date,
		Description:   req.Description,
		Category:      req.Category,
		Amount:        req.Amount,
		Type:          req.Type,
		CurrencyCode:  currency,
		AuditFields:   domain.NewAuditFields(userID, now),
	}

	if err := s.txnRepo.SaveTransaction(ctx, txn); err != nil {
		s.LogError(ctx, err, "Failed to create transaction", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.refreshBudgets(ctx, userID)
	return &txn, nil
}

func (s *transactionService) GetTransactionByID(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, userID, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to get transaction", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

func (s *transactionService) ListTransactions(ctx context.Context, userID string, req dto.ListTransactionsRequest) ([]domain.Transaction, string, error) {
	filter := portsrepo.TransactionListFilter{
		Category: req.Category,
		Type:     domain.TransactionType(req.Type),
		From:     req.From,
		To:       req.To,
	}
	txns, nextToken, err := s.txnRepo.ListTransactions(ctx, userID, filter, req.Limit, req.NextToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			return nil, "", err
		}
		s.LogError(ctx, err, "Failed to list transactions", slog.String("user_id", userID))
		return nil, "", fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nextToken, nil
}

func (s *transactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	if req.Date != nil {
		txn.Date = *req.Date
	}
	if req.Description != nil {
		txn.Description = *req.Description
	}
	if req.Category != nil {
		txn.Category = *req.Category
	}
	if req.Amount != nil {
		if req.Amount.Sign() <= 0 {
			return nil, fmt.Errorf("amount must be positive: %w", apperrors.ErrValidation)
		}
		txn.Amount = *req.Amount
	}
	if req.Type != nil {
		txn.Type = *req.Type
	}
	txn.Touch(userID, time.Now())

	if err := s.txnRepo.UpdateTransaction(ctx, *txn); err != nil {
		s.LogError(ctx, err, "Failed to update transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}

	s.refreshBudgets(ctx, userID)
	return txn, nil
}

func (s *transactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	if err := s.txnRepo.DeleteTransaction(ctx, userID, transactionID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		s.LogError(ctx, err, "Failed to delete transaction", slog.String("transaction_id", transactionID))
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	s.refreshBudgets(ctx, userID)
	return nil
}

// refreshBudgets recomputes derived budget spent amounts after a transaction
// write. Failures are logged, not surfaced, since the write itself succeeded.
func (s *transactionService) refreshBudgets(ctx context.Context, userID string) {
	if err := s.budgetRepo.RecomputeSpent(ctx, userID); err != nil {
		s.LogWarn(ctx, "Failed to recompute budget spent amounts", slog.String("user_id", userID), slog.String("error", err.Error()))
	}
}
