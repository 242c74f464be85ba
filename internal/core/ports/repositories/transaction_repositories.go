package repositories

import (
	"context"
	"time"

	"github.com/finsight-app/finsight_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionListFilter narrows ListTransactions results. Zero values mean
// "no filter" for that field.
type TransactionListFilter struct {
	Category string
	Type     domain.TransactionType
	From     *time.Time
	To       *time.Time
}

// TransactionReader defines read operations for transaction data
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction owned by userID.
	FindTransactionByID(ctx context.Context, userID, transactionID string) (*domain.Transaction, error)

	// ListTransactions returns a page of the user's transactions ordered by
	// date descending, plus an opaque token for the next page ("" when done).
	ListTransactions(ctx context.Context, userID string, filter TransactionListFilter, limit int, nextToken string) ([]domain.Transaction, string, error)

	// ListAllTransactions returns every transaction for the user, newest
	// first. Used by context building, where the full set is needed.
	ListAllTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)

	// SumExpensesByCategory sums expense amounts for one verbatim category.
	SumExpensesByCategory(ctx context.Context, userID, category string) (decimal.Decimal, error)
}

// TransactionWriter defines write operations for transaction data
type TransactionWriter interface {
	// SaveTransaction persists a new transaction.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// SaveTransactions persists a batch of transactions (statement import).
	SaveTransactions(ctx context.Context, txns []domain.Transaction) error

	// UpdateTransaction updates an existing transaction owned by its UserID.
	UpdateTransaction(ctx context.Context, txn domain.Transaction) error

	// DeleteTransaction removes a transaction owned by userID.
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
}

// TransactionRepositoryFacade combines all transaction repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
