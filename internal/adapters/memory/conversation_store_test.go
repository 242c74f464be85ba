package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/finsight-app/finsight_backend/internal/adapters/memory"
	"github.com/finsight-app/finsight_backend/internal/apperrors"
	"github.com/finsight-app/finsight_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConversation(id string, updatedAt time.Time) domain.ChatConversation {
	return domain.ChatConversation{
		ConversationID: id,
		Title:          "test conversation",
		CreatedAt:      updatedAt,
		UpdatedAt:      updatedAt,
	}
}

func TestConversationStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConversationStore()

	conv := newConversation("conv-1", time.Now())
	conv.Messages = []domain.ChatMessage{{MessageID: "m1", Content: "hello", IsUser: true}}

	require.NoError(t, store.CreateConversation(ctx, "user-1", conv))

	got, err := store.GetConversation(ctx, "user-1", "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "conv-1", got.ConversationID)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "hello", got.Messages[0].Content)
}

func TestConversationStore_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConversationStore()

	conv := newConversation("conv-1", time.Now())
	require.NoError(t, store.CreateConversation(ctx, "user-1", conv))

	err := store.CreateConversation(ctx, "user-1", conv)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestConversationStore_CreateEmptyID(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConversationStore()

	err := store.CreateConversation(ctx, "user-1", domain.ChatConversation{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestConversationStore_GetNotFound(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConversationStore()

	_, err := store.GetConversation(ctx, "user-1", "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestConversationStore_GetIsScopedToUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConversationStore()

	require.NoError(t, store.CreateConversation(ctx, "user-1", newConversation("conv-1", time.Now())))

	_, err := store.GetConversation(ctx, "user-2", "conv-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestConversationStore_ListOrderedByUpdatedAt(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConversationStore()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateConversation(ctx, "user-1", newConversation("old", base)))
	require.NoError(t, store.CreateConversation(ctx, "user-1", newConversation("newest", base.Add(2*time.Hour))))
	require.NoError(t, store.CreateConversation(ctx, "user-1", newConversation("middle", base.Add(time.Hour))))
	require.NoError(t, store.CreateConversation(ctx, "user-2", newConversation("other-user", base)))

	convs, err := store.ListConversations(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, convs, 3)
	assert.Equal(t, "newest", convs[0].ConversationID)
	assert.Equal(t, "middle", convs[1].ConversationID)
	assert.Equal(t, "old", convs[2].ConversationID)
}

func TestConversationStore_ListEmpty(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConversationStore()

	convs, err := store.ListConversations(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, convs)
}

func TestConversationStore_AppendMessages(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConversationStore()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateConversation(ctx, "user-1", newConversation("conv-1", created)))

	err := store.AppendMessages(ctx, "user-1", "conv-1",
		domain.ChatMessage{MessageID: "m1", Content: "question", IsUser: true},
		domain.ChatMessage{MessageID: "m2", Content: "answer"},
	)
	require.NoError(t, err)

	got, err := store.GetConversation(ctx, "user-1", "conv-1")
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.True(t, got.UpdatedAt.After(created))
}

func TestConversationStore_AppendToMissingConversation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConversationStore()

	err := store.AppendMessages(ctx, "user-1", "missing", domain.ChatMessage{Content: "hi"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestConversationStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConversationStore()

	require.NoError(t, store.CreateConversation(ctx, "user-1", newConversation("conv-1", time.Now())))
	require.NoError(t, store.DeleteConversation(ctx, "user-1", "conv-1"))

	_, err := store.GetConversation(ctx, "user-1", "conv-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = store.DeleteConversation(ctx, "user-1", "conv-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestConversationStore_ReturnedConversationIsACopy(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConversationStore()

	conv := newConversation("conv-1", time.Now())
	conv.Messages = []domain.ChatMessage{{MessageID: "m1", Content: "original"}}
	require.NoError(t, store.CreateConversation(ctx, "user-1", conv))

	got, err := store.GetConversation(ctx, "user-1", "conv-1")
	require.NoError(t, err)
	got.Messages[0].Content = "mutated"

	again, err := store.GetConversation(ctx, "user-1", "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "original", again.Messages[0].Content)
}
