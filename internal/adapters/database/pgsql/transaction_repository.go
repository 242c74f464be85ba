package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/finsight-app/finsight_backend/internal/apperrors"
	"github.com/finsight-app/finsight_backend/internal/core/domain"
	portsrepo "github.com/finsight-app/finsight_backend/internal/core/ports/repositories"
	"github.com/finsight-app/finsight_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxTransactionRepository struct {
	db *pgxpool.Pool
}

func newPgxTransactionRepository(db *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{db: db}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

const transactionColumns = `transaction_id, user_id, date, description, category, amount, type, currency_code,
		created_at, created_by, last_updated_at, last_updated_by`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := row.Scan(
		&txn.TransactionID,
		&txn.UserID,
		&txn.Date,
		&txn.Description,
		&txn.Category,
		&txn.Amount,
		&txn.Type,
		&txn.CurrencyCode,
		&txn.CreatedAt,
		&txn.CreatedBy,
		&txn.LastUpdatedAt,
		&txn.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	query := `
        INSERT INTO transactions (transaction_id, user_id, date, description, category, amount, type, currency_code,
            created_at, created_by, last_updated_at, last_updated_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
    `
	_, err := r.db.Exec(ctx, query,
		txn.TransactionID,
		txn.UserID,
		txn.Date,
		txn.Description,
		txn.Category,
		txn.Amount,
		txn.Type,
		txn.CurrencyCode,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

func (r *PgxTransactionRepository) SaveTransactions(ctx context.Context, txns []domain.Transaction) error {
	if len(txns) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
        INSERT INTO transactions (transaction_id, user_id, date, description, category, amount, type, currency_code,
            created_at, created_by, last_updated_at, last_updated_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
    `
	for _, txn := range txns {
		batch.Queue(query,
			txn.TransactionID,
			txn.UserID,
			txn.Date,
			txn.Description,
			txn.Category,
			txn.Amount,
			txn.Type,
			txn.CurrencyCode,
			txn.CreatedAt,
			txn.CreatedBy,
			txn.LastUpdatedAt,
			txn.LastUpdatedBy,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range txns {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to save transaction batch: %w", err)
		}
	}
	return nil
}

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE transaction_id = $1 AND user_id = $2;
	`
	txn, err := scanTransaction(r.db.QueryRow(ctx, query, transactionID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}
	return txn, nil
}

// ListTransactions pages through the user's transactions ordered by date then
// creation time, both descending, using a keyset token.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, userID string, filter portsrepo.TransactionListFilter, limit int, nextToken string) ([]domain.Transaction, string, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
        SELECT ` + transactionColumns + `
        FROM transactions
        WHERE user_id = $1
    `
	args := []any{userID}
	argPos := 2

	if nextToken != "" {
		date, createdAt, err := pagination.DecodeToken(nextToken)
		if err != nil {
			return nil, "", fmt.Errorf("invalid next token: %w", apperrors.ErrValidation)
		}
		query += fmt.Sprintf(" AND (date, created_at) < ($%d, $%d)", argPos, argPos+1)
		args = append(args, date, createdAt)
		argPos += 2
	}
	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argPos)
		args = append(args, filter.Category)
		argPos++
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argPos)
		args = append(args, filter.Type)
		argPos++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND date >= $%d", argPos)
		args = append(args, *filter.From)
		argPos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND date <= $%d", argPos)
		args = append(args, *filter.To)
		argPos++
	}

	// Fetch one extra row to know whether a next page exists.
	query += " ORDER BY date DESC, created_at DESC LIMIT $" + strconv.Itoa(argPos)
	args = append(args, limit+1)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, *txn)
	}
	if rows.Err() != nil {
		return nil, "", fmt.Errorf("error iterating transaction rows: %w", rows.Err())
	}

	var token string
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		token = pagination.EncodeToken(last.Date, last.CreatedAt)
	}
	return txns, token, nil
}

func (r *PgxTransactionRepository) ListAllTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	query := `
        SELECT ` + transactionColumns + `
        FROM transactions
        WHERE user_id = $1
        ORDER BY date DESC, created_at DESC;
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, *txn)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", rows.Err())
	}
	return txns, nil
}

func (r *PgxTransactionRepository) SumExpensesByCategory(ctx context.Context, userID, category string) (decimal.Decimal, error) {
	query := `
        SELECT COALESCE(SUM(amount), 0)
        FROM transactions
        WHERE user_id = $1 AND category = $2 AND type = 'expense';
    `
	var sum decimal.Decimal
	if err := r.db.QueryRow(ctx, query, userID, category).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum expenses for category %q: %w", category, err)
	}
	return sum, nil
}

func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	query := `
        UPDATE transactions
        SET date = $1, description = $2, category = $3, amount = $4, type = $5,
            last_updated_at = $6, last_updated_by = $7
        WHERE transaction_id = $8 AND user_id = $9;
    `
	cmdTag, err := r.db.Exec(ctx, query,
		txn.Date,
		txn.Description,
		txn.Category,
		txn.Amount,
		txn.Type,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
		txn.TransactionID,
		txn.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to execute update transaction query: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	query := `
        DELETE FROM transactions
        WHERE transaction_id = $1 AND user_id = $2;
    `
	cmdTag, err := r.db.Exec(ctx, query, transactionID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found: %w", apperrors.ErrNotFound)
	}
	return nil
}
