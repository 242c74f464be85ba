package dto

import (
	"time"

	"github.com/finsight-app/finsight_backend/internal/core/domain"
)

// ChatRequest defines one user message to the assistant. An empty
// ConversationID starts a new conversation.
type ChatRequest struct {
	Message        string       `json:"message" binding:"required,max=2000"`
	ConversationID string       `json:"conversationID"`
	Options        *ChatOptions `json:"options"`
}

// ChatOptions tunes how the assistant answers a single message.
type ChatOptions struct {
	// IncludeFinancialContext defaults to true; nil means unset.
	IncludeFinancialContext *bool `json:"includeFinancialContext"`
	// ResponseStyle hints verbosity: "concise" or "detailed".
	ResponseStyle string `json:"responseStyle" binding:"omitempty,oneof=concise detailed"`
	// MaxContextMessages caps how many prior exchanges are replayed into
	// the prompt.
	MaxContextMessages int `json:"maxContextMessages" binding:"omitempty,min=0,max=20"`
}

// ChatMessageResponse defines one message in a conversation.
type ChatMessageResponse struct {
	MessageID string         `json:"messageID"`
	Content   string         `json:"content"`
	IsUser    bool           `json:"isUser"`
	Timestamp time.Time      `json:"timestamp"`
	IsError   bool           `json:"isError,omitempty"`
	ErrorType string         `json:"errorType,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ChatResponse defines the assistant's reply to one chat request.
type ChatResponse struct {
	ConversationID string              `json:"conversationID"`
	Message        ChatMessageResponse `json:"message"`
	Suggestions    []string            `json:"suggestions,omitempty"`
}

// ConversationResponse defines the data returned for a conversation.
type ConversationResponse struct {
	ConversationID string                `json:"conversationID"`
	Title          string                `json:"title"`
	Messages       []ChatMessageResponse `json:"messages"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

// ConversationSummaryResponse defines the list view of a conversation.
type ConversationSummaryResponse struct {
	ConversationID string    `json:"conversationID"`
	Title          string    `json:"title"`
	MessageCount   int       `json:"messageCount"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ToChatMessageResponse converts a domain.ChatMessage to its DTO
func ToChatMessageResponse(msg *domain.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		MessageID: msg.MessageID,
		Content:   msg.Content,
		IsUser:    msg.IsUser,
		Timestamp: msg.Timestamp,
		IsError:   msg.IsError,
		ErrorType: string(msg.ErrorType),
		Metadata:  msg.Metadata,
	}
}

// ToConversationResponse converts a domain.ChatConversation to its DTO
func ToConversationResponse(conv *domain.ChatConversation) ConversationResponse {
	messages := make([]ChatMessageResponse, len(conv.Messages))
	for i, msg := range conv.Messages {
		messages[i] = ToChatMessageResponse(&msg)
	}
	return ConversationResponse{
		ConversationID: conv.ConversationID,
		Title:          conv.Title,
		Messages:       messages,
		CreatedAt:      conv.CreatedAt,
		UpdatedAt:      conv.UpdatedAt,
	}
}

// ToListConversationsResponse converts conversations to their summary DTOs
func ToListConversationsResponse(convs []domain.ChatConversation) []ConversationSummaryResponse {
	res := make([]ConversationSummaryResponse, len(convs))
	for i, conv := range convs {
		res[i] = ConversationSummaryResponse{
			ConversationID: conv.ConversationID,
			Title:          conv.Title,
			MessageCount:   len(conv.Messages),
			UpdatedAt:      conv.UpdatedAt,
		}
	}
	return res
}
