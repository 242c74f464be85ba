package repositories

import (
	"context"

	"github.com/finsight-app/finsight_backend/internal/core/domain"
)

// GoalReader defines read operations for savings goal data
type GoalReader interface {
	// FindGoalByID retrieves a goal owned by userID.
	FindGoalByID(ctx context.Context, userID, goalID string) (*domain.Goal, error)

	// ListGoals returns a page of the user's goals plus a token for the next
	// page ("" when done).
	ListGoals(ctx context.Context, userID string, limit int, nextToken string) ([]domain.Goal, string, error)
}

// GoalWriter defines write operations for savings goal data
type GoalWriter interface {
	// SaveGoal persists a new goal.
	SaveGoal(ctx context.Context, goal domain.Goal) error

	// UpdateGoal updates an existing goal owned by its UserID.
	UpdateGoal(ctx context.Context, goal domain.Goal) error

	// DeleteGoal removes a goal owned by userID.
	DeleteGoal(ctx context.Context, userID, goalID string) error
}

// GoalRepositoryFacade combines all goal repository interfaces.
type GoalRepositoryFacade interface {
	GoalReader
	GoalWriter
}
