package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/finsight-app/finsight_backend/internal/apperrors"
	"github.com/finsight-app/finsight_backend/internal/core/domain"
	"github.com/finsight-app/finsight_backend/internal/core/ports"
	portsrepo "github.com/finsight-app/finsight_backend/internal/core/ports/repositories"
	portssvc "github.com/finsight-app/finsight_backend/internal/core/ports/services"
	"github.com/finsight-app/finsight_backend/internal/dto"
	"github.com/google/uuid"
)

const (
	maxSuggestions        = 4
	budgetWarnThreshold   = 90.0
	lowSavingsThreshold   = 20.0
	defaultCallTimeout    = 30 * time.Second
	defaultExtraRetries   = 3
	defaultInitialBackoff = time.Second
	defaultBackoffCap     = 10 * time.Second
)

// Fixed user-facing sentences, one per error class. Internal details are
// logged, never shown.
var errorMessages = map[domain.ErrorType]string{
	domain.ErrorTypeValidation: "Please enter a question so I can help with your finances.",
	domain.ErrorTypeRateLimit:  "I'm receiving too many requests right now. Please wait a moment and try again.",
	domain.ErrorTypeNetwork:    "I'm having trouble reaching the assistant service. Please check your connection and try again.",
	domain.ErrorTypeAPI:        "Something went wrong while generating a response. Please try again shortly.",
}

// assistantService implements the AssistantSvc interface.
type assistantService struct {
	BaseService
	generator      ports.TextGenerator
	contextBuilder portssvc.ContextBuilderSvc
	conversations  portsrepo.ConversationStore

	callTimeout    time.Duration
	extraRetries   int
	initialBackoff time.Duration
	backoffCap     time.Duration
	sleep          func(ctx context.Context, d time.Duration) error
}

// AssistantOption is a functional option for configuring the assistant service
type AssistantOption func(*assistantService)

// WithCallTimeout overrides the per-attempt timeout on the model call.
func WithCallTimeout(d time.Duration) AssistantOption {
	return func(s *assistantService) {
		if d > 0 {
			s.callTimeout = d
		}
	}
}

// WithRetryPolicy overrides the retry count and backoff schedule.
func WithRetryPolicy(extraRetries int, initialBackoff, backoffCap time.Duration) AssistantOption {
	return func(s *assistantService) {
		if extraRetries >= 0 {
			s.extraRetries = extraRetries
		}
		if initialBackoff > 0 {
			s.initialBackoff = initialBackoff
		}
		if backoffCap > 0 {
			s.backoffCap = backoffCap
		}
	}
}

// WithSleepFunc replaces the inter-attempt sleep. Tests use this to record
// backoff delays without waiting them out.
func WithSleepFunc(fn func(ctx context.Context, d time.Duration) error) AssistantOption {
	return func(s *assistantService) {
		if fn != nil {
			s.sleep = fn
		}
	}
}

// NewAssistantService creates a new assistant service with the provided options
func NewAssistantService(generator ports.TextGenerator, contextBuilder portssvc.ContextBuilderSvc, conversations portsrepo.ConversationStore, options ...AssistantOption) portssvc.AssistantSvc {
	svc := &assistantService{
		generator:      generator,
		contextBuilder: contextBuilder,
		conversations:  conversations,
		callTimeout:    defaultCallTimeout,
		extraRetries:   defaultExtraRetries,
		initialBackoff: defaultInitialBackoff,
		backoffCap:     defaultBackoffCap,
		sleep:          sleepContext,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure assistantService implements portssvc.AssistantSvc
var _ portssvc.AssistantSvc = (*assistantService)(nil)

// Chat produces one assistant reply. Provider failures never propagate:
// they become an error-flagged assistant message in a normal response.
func (s *assistantService) Chat(ctx context.Context, userID string, req dto.ChatRequest) (*dto.ChatResponse, error) {
	trimmed := strings.TrimSpace(req.Message)
	if trimmed == "" {
		// Short-circuit without touching the model; empty input should not
		// spend quota.
		return s.errorResponse(ctx, userID, req, domain.ErrorTypeValidation, nil), nil
	}

	includeContext := true
	style := ""
	maxExchanges := 0
	if req.Options != nil {
		if req.Options.IncludeFinancialContext != nil {
			includeContext = *req.Options.IncludeFinancialContext
		}
		style = req.Options.ResponseStyle
		maxExchanges = req.Options.MaxContextMessages
	}

	var fc *domain.FinancialContext
	if includeContext {
		var err error
		fc, err = s.contextBuilder.BuildFinancialContext(ctx, userID)
		if err != nil {
			// Data-fetch failures are infrastructure, not model, problems;
			// these do surface as errors to the transport layer.
			s.LogError(ctx, err, "Failed to build financial context", slog.String("user_id", userID))
			return nil, fmt.Errorf("failed to build financial context: %w", err)
		}
	}

	history := s.conversationHistory(ctx, userID, req.ConversationID, maxExchanges)
	prompt := buildChatPrompt(fc, history, trimmed, style)

	text, attempts, err := s.callWithRetry(ctx, prompt)
	if err != nil {
		errType := classifyError(err)
		s.LogError(ctx, err, "Model call failed after retries",
			slog.Int("attempts", attempts),
			slog.String("error_type", string(errType)))
		return s.errorResponse(ctx, userID, req, errType, fc), nil
	}

	reply := domain.ChatMessage{
		MessageID: uuid.NewString(),
		Content:   strings.TrimSpace(text),
		IsUser:    false,
		Timestamp: time.Now(),
		Metadata:  map[string]any{"attempts": attempts},
	}

	conversationID := s.saveExchange(ctx, userID, req.ConversationID, trimmed, reply)

	resp := &dto.ChatResponse{
		ConversationID: conversationID,
		Message:        dto.ToChatMessageResponse(&reply),
		Suggestions:    SuggestFollowUps(fc),
	}
	return resp, nil
}

// callWithRetry invokes the model with a hard per-attempt timeout, retrying
// transparently with exponential backoff. Every failure is retried the same
// way regardless of cause; classification happens only after the final
// attempt, for the user-facing message.
func (s *assistantService) callWithRetry(ctx context.Context, prompt string) (string, int, error) {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= s.extraRetries; attempt++ {
		if attempt > 0 {
			delay := s.initialBackoff << (attempt - 1)
			if delay > s.backoffCap {
				delay = s.backoffCap
			}
			if err := s.sleep(ctx, delay); err != nil {
				return "", attempts, fmt.Errorf("canceled while waiting to retry: %w", err)
			}
		}

		attempts++
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		text, err := s.generator.GenerateText(callCtx, prompt)
		cancel()

		if err == nil {
			return text, attempts, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", attempts, fmt.Errorf("request canceled: %w", ctx.Err())
		}
	}

	return "", attempts, lastErr
}

// classifyError maps a failure to the error taxonomy by case-insensitive
// substring match on its message text.
func classifyError(err error) domain.ErrorType {
	if err == nil {
		return domain.ErrorTypeAPI
	}
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "quota"):
		return domain.ErrorTypeRateLimit
	case strings.Contains(msg, "network") || strings.Contains(msg, "timeout") || strings.Contains(msg, "fetch") ||
		errors.Is(err, context.DeadlineExceeded):
		return domain.ErrorTypeNetwork
	case strings.Contains(msg, "validation") || strings.Contains(msg, "invalid"):
		return domain.ErrorTypeValidation
	default:
		return domain.ErrorTypeAPI
	}
}

// suggestionRule pairs a predicate with the follow-up it produces. Rules are
// evaluated in fixed priority order.
type suggestionRule struct {
	applies  func(fc *domain.FinancialContext) bool
	question func(fc *domain.FinancialContext) string
}

var suggestionRules = []suggestionRule{
	{
		applies: func(fc *domain.FinancialContext) bool {
			for _, bp := range fc.BudgetPerformances {
				if bp.PercentageUsed > budgetWarnThreshold {
					return true
				}
			}
			return false
		},
		question: func(fc *domain.FinancialContext) string {
			for _, bp := range fc.BudgetPerformances {
				if bp.PercentageUsed > budgetWarnThreshold {
					return fmt.Sprintf("How can I stay within my %s budget?", bp.Category)
				}
			}
			return ""
		},
	},
	{
		applies: func(fc *domain.FinancialContext) bool {
			return len(fc.CategoryBreakdown) > 0
		},
		question: func(fc *domain.FinancialContext) string {
			top := fc.TopCategories(1)
			return fmt.Sprintf("How can I reduce my %s spending?", top[0].Category)
		},
	},
	{
		applies: func(fc *domain.FinancialContext) bool {
			return fc.SavingsRate < lowSavingsThreshold
		},
		question: func(fc *domain.FinancialContext) string {
			return "What can I do to improve my savings rate?"
		},
	},
	{
		applies: func(fc *domain.FinancialContext) bool {
			return fc.NetIncome.Sign() < 0
		},
		question: func(fc *domain.FinancialContext) string {
			return "How can I improve my overall financial situation?"
		},
	},
}

var fallbackSuggestions = []string{
	"What's my financial health score?",
	"Show me my spending trends",
	"Help me plan next month's budget",
}

// SuggestFollowUps derives up to four follow-up questions from the context,
// heuristic rules first, then generic fallbacks. Duplicates are dropped.
func SuggestFollowUps(fc *domain.FinancialContext) []string {
	suggestions := make([]string, 0, maxSuggestions)
	seen := make(map[string]bool)

	add := func(q string) {
		if q == "" || seen[q] || len(suggestions) >= maxSuggestions {
			return
		}
		seen[q] = true
		suggestions = append(suggestions, q)
	}

	if fc != nil {
		for _, rule := range suggestionRules {
			if rule.applies(fc) {
				add(rule.question(fc))
			}
		}
	}
	for _, q := range fallbackSuggestions {
		add(q)
	}

	return suggestions
}

// errorResponse builds the degraded reply for a classified failure and
// records it in the conversation alongside the user's message.
func (s *assistantService) errorResponse(ctx context.Context, userID string, req dto.ChatRequest, errType domain.ErrorType, fc *domain.FinancialContext) *dto.ChatResponse {
	reply := domain.ChatMessage{
		MessageID: uuid.NewString(),
		Content:   errorMessages[errType],
		IsUser:    false,
		Timestamp: time.Now(),
		IsError:   true,
		ErrorType: errType,
	}

	conversationID := req.ConversationID
	if trimmed := strings.TrimSpace(req.Message); trimmed != "" {
		conversationID = s.saveExchange(ctx, userID, req.ConversationID, trimmed, reply)
	}

	return &dto.ChatResponse{
		ConversationID: conversationID,
		Message:        dto.ToChatMessageResponse(&reply),
		Suggestions:    SuggestFollowUps(fc),
	}
}

// conversationHistory renders prior turns for the prompt. A missing or
// unknown conversation ID means no history, never an error.
func (s *assistantService) conversationHistory(ctx context.Context, userID, conversationID string, maxExchanges int) string {
	if conversationID == "" {
		return ""
	}
	conv, err := s.conversations.GetConversation(ctx, userID, conversationID)
	if err != nil {
		return ""
	}
	return renderHistory(conv, maxExchanges)
}

// saveExchange appends the user message and reply to the conversation,
// creating it first if needed. Best effort: failures are logged only.
func (s *assistantService) saveExchange(ctx context.Context, userID, conversationID, userMessage string, reply domain.ChatMessage) string {
	userMsg := domain.ChatMessage{
		MessageID: uuid.NewString(),
		Content:   userMessage,
		IsUser:    true,
		Timestamp: time.Now(),
	}

	if conversationID == "" {
		conversationID = uuid.NewString()
		now := time.Now()
		conv := domain.ChatConversation{
			ConversationID: conversationID,
			Title:          domain.ConversationTitle(userMessage),
			Messages:       []domain.ChatMessage{userMsg, reply},
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.conversations.CreateConversation(ctx, userID, conv); err != nil {
			s.LogWarn(ctx, "Failed to create conversation", slog.String("error", err.Error()))
		}
		return conversationID
	}

	if err := s.conversations.AppendMessages(ctx, userID, conversationID, userMsg, reply); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Unknown id from the client; start fresh under it.
			now := time.Now()
			conv := domain.ChatConversation{
				ConversationID: conversationID,
				Title:          domain.ConversationTitle(userMessage),
				Messages:       []domain.ChatMessage{userMsg, reply},
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := s.conversations.CreateConversation(ctx, userID, conv); err != nil {
				s.LogWarn(ctx, "Failed to create conversation", slog.String("error", err.Error()))
			}
		} else {
			s.LogWarn(ctx, "Failed to append to conversation", slog.String("error", err.Error()))
		}
	}
	return conversationID
}

func (s *assistantService) GetConversation(ctx context.Context, userID, conversationID string) (*domain.ChatConversation, error) {
	return s.conversations.GetConversation(ctx, userID, conversationID)
}

func (s *assistantService) ListConversations(ctx context.Context, userID string) ([]domain.ChatConversation, error) {
	return s.conversations.ListConversations(ctx, userID)
}

func (s *assistantService) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	return s.conversations.DeleteConversation(ctx, userID, conversationID)
}

// Health issues a minimal model request to report provider reachability.
func (s *assistantService) Health(ctx context.Context) error {
	healthCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.generator.Ping(healthCtx)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
