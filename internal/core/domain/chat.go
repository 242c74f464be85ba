package domain

import "time"

// ErrorType classifies assistant failures for the caller. The classification
// is derived from the failure's message text, not its cause chain.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation_error"
	ErrorTypeRateLimit  ErrorType = "rate_limit"
	ErrorTypeNetwork    ErrorType = "network_error"
	ErrorTypeAPI        ErrorType = "api_error"
)

// ChatMessage is a single turn in a conversation. Assistant failures are
// represented as messages with IsError set, never as errors returned to the
// transport layer.
type ChatMessage struct {
	MessageID string         `json:"messageID"`
	Content   string         `json:"content"`
	IsUser    bool           `json:"isUser"`
	Timestamp time.Time      `json:"timestamp"`
	IsError   bool           `json:"isError,omitempty"`
	ErrorType ErrorType      `json:"errorType,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ChatConversation groups chat turns under a client-supplied id. Held in a
// conversation store with process-bounded durability; losing one on restart
// is acceptable.
type ChatConversation struct {
	ConversationID string        `json:"conversationID"`
	Title          string        `json:"title"` // Derived from the first user message
	Messages       []ChatMessage `json:"messages"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

const conversationTitleMax = 50

// ConversationTitle derives a conversation title from its first user
// message: truncated to 50 characters with an ellipsis appended if longer.
// Truncation counts runes so a multi-byte character is never split.
func ConversationTitle(firstUserMessage string) string {
	runes := []rune(firstUserMessage)
	if len(runes) <= conversationTitleMax {
		return firstUserMessage
	}
	return string(runes[:conversationTitleMax]) + "..."
}
