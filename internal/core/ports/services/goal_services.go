package services

import (
	"context"

	"github.com/finsight-app/finsight_backend/internal/core/domain"
	"github.com/finsight-app/finsight_backend/internal/dto"
)

// GoalReaderSvc defines read operations for savings goal data
type GoalReaderSvc interface {
	// GetGoalByID retrieves a goal owned by the user.
	GetGoalByID(ctx context.Context, userID, goalID string) (*domain.Goal, error)

	// ListGoals retrieves a page of the user's goals with an opaque token
	// for the next page.
	ListGoals(ctx context.Context, userID string, limit int, nextToken string) ([]domain.Goal, string, error)
}

// GoalWriterSvc defines write operations for savings goal data
type GoalWriterSvc interface {
	// CreateGoal creates a new savings goal.
	CreateGoal(ctx context.Context, userID string, req dto.CreateGoalRequest) (*domain.Goal, error)

	// UpdateGoal updates an existing goal owned by the user.
	UpdateGoal(ctx context.Context, userID, goalID string, req dto.UpdateGoalRequest) (*domain.Goal, error)

	// DeleteGoal removes a goal owned by the user.
	DeleteGoal(ctx context.Context, userID, goalID string) error
}

// GoalSvcFacade combines all goal service interfaces
type GoalSvcFacade interface {
	GoalReaderSvc
	GoalWriterSvc
}
