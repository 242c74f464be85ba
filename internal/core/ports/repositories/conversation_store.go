package repositories

import (
	"context"

	"github.com/finsight-app/finsight_backend/internal/core/domain"
)

// ConversationStore holds chat conversations keyed by user. The default
// implementation is in-memory; implementations must be safe for concurrent
// use and must return copies so callers cannot mutate stored state.
type ConversationStore interface {
	// CreateConversation stores a new conversation for the user. The first
	// user message, if any, seeds the conversation title.
	CreateConversation(ctx context.Context, userID string, conversation domain.ChatConversation) error

	// GetConversation retrieves one conversation owned by the user.
	GetConversation(ctx context.Context, userID, conversationID string) (*domain.ChatConversation, error)

	// ListConversations returns the user's conversations, most recently
	// updated first.
	ListConversations(ctx context.Context, userID string) ([]domain.ChatConversation, error)

	// AppendMessages adds messages to an existing conversation and bumps its
	// updated time.
	AppendMessages(ctx context.Context, userID, conversationID string, messages ...domain.ChatMessage) error

	// DeleteConversation removes a conversation owned by the user.
	DeleteConversation(ctx context.Context, userID, conversationID string) error
}
