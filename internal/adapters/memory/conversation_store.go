package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/finsight-app/finsight_backend/internal/apperrors"
	"github.com/finsight-app/finsight_backend/internal/core/domain"
	portsrepo "github.com/finsight-app/finsight_backend/internal/core/ports/repositories"
)

// ConversationStore keeps chat conversations in process memory, keyed by
// user then conversation ID. Contents are lost on restart.
type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]map[string]*domain.ChatConversation
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[string]map[string]*domain.ChatConversation),
	}
}

// Ensure ConversationStore implements portsrepo.ConversationStore
var _ portsrepo.ConversationStore = (*ConversationStore)(nil)

func (s *ConversationStore) CreateConversation(ctx context.Context, userID string, conversation domain.ChatConversation) error {
	if conversation.ConversationID == "" {
		return fmt.Errorf("conversation ID is empty: %w", apperrors.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userConvs, ok := s.conversations[userID]
	if !ok {
		userConvs = make(map[string]*domain.ChatConversation)
		s.conversations[userID] = userConvs
	}
	if _, exists := userConvs[conversation.ConversationID]; exists {
		return fmt.Errorf("conversation %s already exists: %w", conversation.ConversationID, apperrors.ErrDuplicate)
	}

	stored := copyConversation(&conversation)
	userConvs[conversation.ConversationID] = stored
	return nil
}

func (s *ConversationStore) GetConversation(ctx context.Context, userID, conversationID string) (*domain.ChatConversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[userID][conversationID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return copyConversation(conv), nil
}

func (s *ConversationStore) ListConversations(ctx context.Context, userID string) ([]domain.ChatConversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userConvs := s.conversations[userID]
	result := make([]domain.ChatConversation, 0, len(userConvs))
	for _, conv := range userConvs {
		result = append(result, *copyConversation(conv))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

func (s *ConversationStore) AppendMessages(ctx context.Context, userID, conversationID string, messages ...domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[userID][conversationID]
	if !ok {
		return apperrors.ErrNotFound
	}

	conv.Messages = append(conv.Messages, messages...)
	conv.UpdatedAt = time.Now()
	return nil
}

func (s *ConversationStore) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	userConvs := s.conversations[userID]
	if _, ok := userConvs[conversationID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(userConvs, conversationID)
	return nil
}

// copyConversation returns a deep enough copy that callers cannot mutate
// stored messages through the returned value.
func copyConversation(conv *domain.ChatConversation) *domain.ChatConversation {
	cp := *conv
	cp.Messages = make([]domain.ChatMessage, len(conv.Messages))
	copy(cp.Messages, conv.Messages)
	return &cp
}
