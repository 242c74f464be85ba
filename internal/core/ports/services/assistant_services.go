package services

import (
	"context"

	"github.com/finsight-app/finsight_backend/internal/core/domain"
	"github.com/finsight-app/finsight_backend/internal/dto"
)

// AssistantSvc defines the chat assistant operations.
type AssistantSvc interface {
	// Chat answers one user message against the user's financial data.
	// Provider failures surface as an assistant message flagged with an
	// error type rather than an error return.
	Chat(ctx context.Context, userID string, req dto.ChatRequest) (*dto.ChatResponse, error)

	// GetConversation retrieves a stored conversation owned by the user.
	GetConversation(ctx context.Context, userID, conversationID string) (*domain.ChatConversation, error)

	// ListConversations returns the user's conversations, most recently
	// updated first.
	ListConversations(ctx context.Context, userID string) ([]domain.ChatConversation, error)

	// DeleteConversation removes a conversation owned by the user.
	DeleteConversation(ctx context.Context, userID, conversationID string) error

	// Health reports whether the LLM provider is reachable.
	Health(ctx context.Context) error
}

// ContextBuilderSvc assembles the financial snapshot injected into prompts.
type ContextBuilderSvc interface {
	// BuildFinancialContext aggregates the user's transactions and budgets
	// into the derived totals and breakdowns the assistant prompts use.
	BuildFinancialContext(ctx context.Context, userID string) (*domain.FinancialContext, error)
}
