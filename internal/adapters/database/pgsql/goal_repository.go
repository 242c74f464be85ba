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

type PgxGoalRepository struct {
	db *pgxpool.Pool
}

func newPgxGoalRepository(db *pgxpool.Pool) portsrepo.GoalRepositoryFacade {
	return &PgxGoalRepository{db: db}
}

// Ensure PgxGoalRepository implements portsrepo.GoalRepositoryFacade
var _ portsrepo.GoalRepositoryFacade = (*PgxGoalRepository)(nil)

const goalColumns = `goal_id, user_id, name, target_amount, current_amount, target_date,
		created_at, created_by, last_updated_at, last_updated_by`

func scanGoal(row pgx.Row) (*domain.Goal, error) {
	var goal domain.Goal
	err := row.Scan(
		&goal.GoalID,
		&goal.UserID,
		&goal.Name,
		&goal.TargetAmount,
		&goal.CurrentAmount,
		&goal.TargetDate,
		&goal.CreatedAt,
		&goal.CreatedBy,
		&goal.LastUpdatedAt,
		&goal.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

func (r *PgxGoalRepository) SaveGoal(ctx context.Context, goal domain.Goal) error {
	query := `
        INSERT INTO goals (goal_id, user_id, name, target_amount, current_amount, target_date,
            created_at, created_by, last_updated_at, last_updated_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
    `
	_, err := r.db.Exec(ctx, query,
		goal.GoalID,
		goal.UserID,
		goal.Name,
		goal.TargetAmount,
		goal.CurrentAmount,
		goal.TargetDate,
		goal.CreatedAt,
		goal.CreatedBy,
		goal.LastUpdatedAt,
		goal.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save goal: %w", err)
	}
	return nil
}

func (r *PgxGoalRepository) FindGoalByID(ctx context.Context, userID, goalID string) (*domain.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE goal_id = $1 AND user_id = $2;
	`
	goal, err := scanGoal(r.db.QueryRow(ctx, query, goalID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find goal by ID %s: %w", goalID, err)
	}
	return goal, nil
}

func (r *PgxGoalRepository) ListGoals(ctx context.Context, userID string, limit int, nextToken string) ([]domain.Goal, string, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
        SELECT ` + goalColumns + `
        FROM goals
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
		return nil, "", fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	goals := []domain.Goal{}
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan goal row: %w", err)
		}
		goals = append(goals, *goal)
	}
	if rows.Err() != nil {
		return nil, "", fmt.Errorf("error iterating goal rows: %w", rows.Err())
	}

	var token string
	if len(goals) > limit {
		goals = goals[:limit]
		token = pagination.EncodeDateBasedToken(goals[len(goals)-1].CreatedAt)
	}
	return goals, token, nil
}

func (r *PgxGoalRepository) UpdateGoal(ctx context.Context, goal domain.Goal) error {
	query := `
        UPDATE goals
        SET name = $1, target_amount = $2, current_amount = $3, target_date = $4,
            last_updated_at = $5, last_updated_by = $6
        WHERE goal_id = $7 AND user_id = $8;
    `
	cmdTag, err := r.db.Exec(ctx, query,
		goal.Name,
		goal.TargetAmount,
		goal.CurrentAmount,
		goal.TargetDate,
		goal.LastUpdatedAt,
		goal.LastUpdatedBy,
		goal.GoalID,
		goal.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to execute update goal query: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("goal not found: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxGoalRepository) DeleteGoal(ctx context.Context, userID, goalID string) error {
	query := `
        DELETE FROM goals
        WHERE goal_id = $1 AND user_id = $2;
    `
	cmdTag, err := r.db.Exec(ctx, query, goalID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("goal not found: %w", apperrors.ErrNotFound)
	}
	return nil
}
