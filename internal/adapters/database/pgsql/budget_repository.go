package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/finsight-app/finsight_backend/internal/apperrors"
	"github.com/finsight-app/finsight_backend/internal/core/domain"
	portsrepo "github.com/finsight-app/finsight_backend/internal/core/ports/repositories"
	"github.com/finsight-app/finsight_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxBudgetRepository struct {
	db *pgxpool.Pool
}

func newPgxBudgetRepository(db *pgxpool.Pool) portsrepo.BudgetRepositoryFacade {
	return &PgxBudgetRepository{db: db}
}

// Ensure PgxBudgetRepository implements portsrepo.BudgetRepositoryFacade
var _ portsrepo.BudgetRepositoryFacade = (*PgxBudgetRepository)(nil)

const budgetColumns = `budget_id, user_id, category, budget_amount, spent_amount, period,
		created_at, created_by, last_updated_at, last_updated_by`

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var budget domain.Budget
	err := row.Scan(
		&budget.BudgetID,
		&budget.UserID,
		&budget.Category,
		&budget.BudgetAmount,
		&budget.SpentAmount,
		&budget.Period,
		&budget.CreatedAt,
		&budget.CreatedBy,
		&budget.LastUpdatedAt,
		&budget.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

func (r *PgxBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	query := `
        INSERT INTO budgets (budget_id, user_id, category, budget_amount, spent_amount, period,
            created_at, created_by, last_updated_at, last_updated_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
    `
	_, err := r.db.Exec(ctx, query,
		budget.BudgetID,
		budget.UserID,
		budget.Category,
		budget.BudgetAmount,
		budget.SpentAmount,
		budget.Period,
		budget.CreatedAt,
		budget.CreatedBy,
		budget.LastUpdatedAt,
		budget.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("budget already exists for category %q: %w", budget.Category, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save budget: %w", err)
	}
	return nil
}

func (r *PgxBudgetRepository) FindBudgetByID(ctx context.Context, userID, budgetID string) (*domain.Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budgets
		WHERE budget_id = $1 AND user_id = $2;
	`
	budget, err := scanBudget(r.db.QueryRow(ctx, query, budgetID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find budget by ID %s: %w", budgetID, err)
	}
	return budget, nil
}

func (r *PgxBudgetRepository) FindBudgetByCategory(ctx context.Context, userID, category string) (*domain.Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budgets
		WHERE user_id = $1 AND category = $2;
	`
	budget, err := scanBudget(r.db.QueryRow(ctx, query, userID, category))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find budget for category %q: %w", category, err)
	}
	return budget, nil
}

func (r *PgxBudgetRepository) ListBudgets(ctx context.Context, userID string, limit int, nextToken string) ([]domain.Budget, string, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
        SELECT ` + budgetColumns + `
        FROM budgets
        WHERE user_id = $1
    `
	args := []any{userID}

	if nextToken != "" {
		createdAt, err := pagination.DecodeDateBasedToken(nextToken)
		if err != nil {
			return nil, "", fmt.Errorf("invalid next token: %w", apperrors.ErrValidation)
		}
		query += " AND created_at < $2"
		args = append(args, createdAt)
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args)+1)
	args = append(args, limit+1)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	budgets := []domain.Budget{}
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan budget row: %w", err)
		}
		budgets = append(budgets, *budget)
	}
	if rows.Err() != nil {
		return nil, "", fmt.Errorf("error iterating budget rows: %w", rows.Err())
	}

	var token string
	if len(budgets) > limit {
		budgets = budgets[:limit]
		token = pagination.EncodeDateBasedToken(budgets[len(budgets)-1].CreatedAt)
	}
	return budgets, token, nil
}

func (r *PgxBudgetRepository) ListAllBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	query := `
        SELECT ` + budgetColumns + `
        FROM budgets
        WHERE user_id = $1
        ORDER BY created_at DESC;
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	budgets := []domain.Budget{}
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget row: %w", err)
		}
		budgets = append(budgets, *budget)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating budget rows: %w", rows.Err())
	}
	return budgets, nil
}

func (r *PgxBudgetRepository) UpdateBudget(ctx context.Context, budget domain.Budget) error {
	query := `
        UPDATE budgets
        SET category = $1, budget_amount = $2, period = $3,
            last_updated_at = $4, last_updated_by = $5
        WHERE budget_id = $6 AND user_id = $7;
    `
	cmdTag, err := r.db.Exec(ctx, query,
		budget.Category,
		budget.BudgetAmount,
		budget.Period,
		budget.LastUpdatedAt,
		budget.LastUpdatedBy,
		budget.BudgetID,
		budget.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("budget already exists for category %q: %w", budget.Category, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to execute update budget query: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("budget not found: %w", apperrors.ErrNotFound)
	}
	return nil
}

// RecomputeSpent refreshes spent_amount on all of the user's budgets from
// the sum of expense transactions in the matching category. Categories match
// verbatim, the same rule the context builder uses.
func (r *PgxBudgetRepository) RecomputeSpent(ctx context.Context, userID string) error {
	query := `
        UPDATE budgets b
        SET spent_amount = COALESCE((
            SELECT SUM(t.amount)
            FROM transactions t
            WHERE t.user_id = b.user_id
              AND t.category = b.category
              AND t.type = 'expense'
        ), 0)
        WHERE b.user_id = $1;
    `
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to recompute budget spent amounts: %w", err)
	}
	return nil
}

func (r *PgxBudgetRepository) DeleteBudget(ctx context.Context, userID, budgetID string) error {
	query := `
        DELETE FROM budgets
        WHERE budget_id = $1 AND user_id = $2;
    `
	cmdTag, err := r.db.Exec(ctx, query, budgetID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("budget not found: %w", apperrors.ErrNotFound)
	}
	return nil
}
