package dto

import (
	"time"

	"github.com/finsight-app/finsight_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateGoalRequest defines the data needed to create a savings goal.
type CreateGoalRequest struct {
	Name          string           `json:"name" binding:"required"`
	TargetAmount  decimal.Decimal  `json:"targetAmount" binding:"required,decimalpositive"`
	CurrentAmount *decimal.Decimal `json:"currentAmount"` // Optional, defaults to zero
	TargetDate    *time.Time       `json:"targetDate"`
}

// UpdateGoalRequest defines the data allowed for updating a goal.
type UpdateGoalRequest struct {
	Name          *string          `json:"name"`
	TargetAmount  *decimal.Decimal `json:"targetAmount" binding:"omitempty,decimalpositive"`
	CurrentAmount *decimal.Decimal `json:"currentAmount"`
	TargetDate    *time.Time       `json:"targetDate"`
}

// ListGoalsRequest defines query parameters for listing goals.
type ListGoalsRequest struct {
	Limit     int    `form:"limit,default=20"`
	NextToken string `form:"nextToken"`
}

// GoalResponse defines the data returned for a savings goal.
type GoalResponse struct {
	GoalID             string          `json:"goalID"`
	Name               string          `json:"name"`
	TargetAmount       decimal.Decimal `json:"targetAmount"`
	CurrentAmount      decimal.Decimal `json:"currentAmount"`
	PercentageComplete float64         `json:"percentageComplete"`
	TargetDate         *time.Time      `json:"targetDate,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	LastUpdatedAt      time.Time       `json:"lastUpdatedAt"`
}

// ListGoalsResponse wraps a page of goals.
type ListGoalsResponse struct {
	Goals     []GoalResponse `json:"goals"`
	NextToken string         `json:"nextToken,omitempty"`
}

// ToGoalResponse converts a domain.Goal to GoalResponse DTO
func ToGoalResponse(goal *domain.Goal) GoalResponse {
	return GoalResponse{
		GoalID:             goal.GoalID,
		Name:               goal.Name,
		TargetAmount:       goal.TargetAmount,
		CurrentAmount:      goal.CurrentAmount,
		PercentageComplete: goal.PercentageComplete(),
		TargetDate:         goal.TargetDate,
		CreatedAt:          goal.CreatedAt,
		LastUpdatedAt:      goal.LastUpdatedAt,
	}
}

// ToListGoalsResponse converts a page of domain goals to the list DTO
func ToListGoalsResponse(goals []domain.Goal, nextToken string) ListGoalsResponse {
	res := make([]GoalResponse, len(goals))
	for i, goal := range goals {
		res[i] = ToGoalResponse(&goal)
	}
	return ListGoalsResponse{
		Goals:     res,
		NextToken: nextToken,
	}
}
