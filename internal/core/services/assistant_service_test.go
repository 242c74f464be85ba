package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/finsight-app/finsight_backend/internal/adapters/memory"
	"github.com/finsight-app/finsight_backend/internal/core/domain"
	portssvc "github.com/finsight-app/finsight_backend/internal/core/ports/services"
	"github.com/finsight-app/finsight_backend/internal/core/services"
	"github.com/finsight-app/finsight_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock TextGenerator ---

type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockTextGenerator) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- Mock ContextBuilderSvc ---

type MockContextBuilder struct {
	mock.Mock
}

func (m *MockContextBuilder) BuildFinancialContext(ctx context.Context, userID string) (*domain.FinancialContext, error) {
	args := m.Called(ctx, userID)
	var fc *domain.FinancialContext
	if args.Get(0) != nil {
		fc = args.Get(0).(*domain.FinancialContext)
	}
	return fc, args.Error(1)
}

// --- Test Suite ---

type AssistantServiceTestSuite struct {
	suite.Suite
	mockGenerator  *MockTextGenerator
	mockBuilder    *MockContextBuilder
	conversations  *memory.ConversationStore
	recordedSleeps []time.Duration
	service        portssvc.AssistantSvc
	ctx            context.Context
	userID         string
}

func (s *AssistantServiceTestSuite) SetupTest() {
	s.mockGenerator = new(MockTextGenerator)
	s.mockBuilder = new(MockContextBuilder)
	s.conversations = memory.NewConversationStore()
	s.recordedSleeps = nil
	s.ctx = context.Background()
	s.userID = "user-1"

	s.service = services.NewAssistantService(
		s.mockGenerator,
		s.mockBuilder,
		s.conversations,
		services.WithSleepFunc(func(ctx context.Context, d time.Duration) error {
			s.recordedSleeps = append(s.recordedSleeps, d)
			return nil
		}),
	)
}

func healthyContext() *domain.FinancialContext {
	return &domain.FinancialContext{
		TotalIncome:   decimal.NewFromInt(5000),
		TotalExpenses: decimal.NewFromInt(3000),
		NetIncome:     decimal.NewFromInt(2000),
		SavingsRate:   40.0,
	}
}

func (s *AssistantServiceTestSuite) TestChat_Success() {
	s.mockBuilder.On("BuildFinancialContext", s.ctx, s.userID).Return(healthyContext(), nil).Once()
	s.mockGenerator.On("GenerateText", mock.Anything, mock.Anything).Return("You spent less than you earned this month.", nil).Once()

	resp, err := s.service.Chat(s.ctx, s.userID, dto.ChatRequest{Message: "How am I doing?"})

	s.Require().NoError(err)
	s.Require().NotNil(resp)
	s.Equal("You spent less than you earned this month.", resp.Message.Content)
	s.False(resp.Message.IsError)
	s.NotEmpty(resp.ConversationID)
	s.LessOrEqual(len(resp.Suggestions), 4)
	s.Empty(s.recordedSleeps)

	// Both turns must be recorded.
	conv, err := s.conversations.GetConversation(s.ctx, s.userID, resp.ConversationID)
	s.Require().NoError(err)
	s.Require().Len(conv.Messages, 2)
	s.True(conv.Messages[0].IsUser)
	s.Equal("How am I doing?", conv.Messages[0].Content)
	s.False(conv.Messages[1].IsUser)

	s.mockGenerator.AssertExpectations(s.T())
}

func (s *AssistantServiceTestSuite) TestChat_RetriesThenSucceeds() {
	s.mockBuilder.On("BuildFinancialContext", s.ctx, s.userID).Return(healthyContext(), nil).Once()
	transient := errors.New("connection reset")
	s.mockGenerator.On("GenerateText", mock.Anything, mock.Anything).Return("", transient).Times(3)
	s.mockGenerator.On("GenerateText", mock.Anything, mock.Anything).Return("All good.", nil).Once()

	resp, err := s.service.Chat(s.ctx, s.userID, dto.ChatRequest{Message: "hello"})

	s.Require().NoError(err)
	s.False(resp.Message.IsError)
	s.Equal("All good.", resp.Message.Content)
	// 1s, 2s, 4s exponential backoff before each retry.
	s.Equal([]time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, s.recordedSleeps)
	s.mockGenerator.AssertNumberOfCalls(s.T(), "GenerateText", 4)
}

func (s *AssistantServiceTestSuite) TestChat_ExhaustedRetriesRateLimit() {
	s.mockBuilder.On("BuildFinancialContext", s.ctx, s.userID).Return(healthyContext(), nil).Once()
	s.mockGenerator.On("GenerateText", mock.Anything, mock.Anything).Return("", errors.New("googleapi: quota exceeded for model")).Times(4)

	resp, err := s.service.Chat(s.ctx, s.userID, dto.ChatRequest{Message: "hello"})

	// Model failure is a degraded reply, not an error.
	s.Require().NoError(err)
	s.True(resp.Message.IsError)
	s.Equal(string(domain.ErrorTypeRateLimit), resp.Message.ErrorType)
	s.Equal("I'm receiving too many requests right now. Please wait a moment and try again.", resp.Message.Content)
	s.mockGenerator.AssertNumberOfCalls(s.T(), "GenerateText", 4)
}

func (s *AssistantServiceTestSuite) TestChat_ErrorClassification() {
	tests := []struct {
		name     string
		err      error
		wantType domain.ErrorType
		wantMsg  string
	}{
		{
			name:     "rate limit keyword",
			err:      errors.New("upstream rate limit hit"),
			wantType: domain.ErrorTypeRateLimit,
			wantMsg:  "I'm receiving too many requests right now. Please wait a moment and try again.",
		},
		{
			name:     "network keyword",
			err:      errors.New("network unreachable"),
			wantType: domain.ErrorTypeNetwork,
			wantMsg:  "I'm having trouble reaching the assistant service. Please check your connection and try again.",
		},
		{
			name:     "timeout keyword",
			err:      errors.New("request timeout after 30s"),
			wantType: domain.ErrorTypeNetwork,
			wantMsg:  "I'm having trouble reaching the assistant service. Please check your connection and try again.",
		},
		{
			name:     "invalid keyword",
			err:      errors.New("invalid request payload"),
			wantType: domain.ErrorTypeValidation,
			wantMsg:  "Please enter a question so I can help with your finances.",
		},
		{
			name:     "unrecognized message",
			err:      errors.New("internal server error"),
			wantType: domain.ErrorTypeAPI,
			wantMsg:  "Something went wrong while generating a response. Please try again shortly.",
		},
		{
			// "rate limit" wins over "timeout" because rate limiting is
			// checked first.
			name:     "rate limit beats network",
			err:      errors.New("rate limit: request timeout"),
			wantType: domain.ErrorTypeRateLimit,
			wantMsg:  "I'm receiving too many requests right now. Please wait a moment and try again.",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			s.mockBuilder.On("BuildFinancialContext", s.ctx, s.userID).Return(healthyContext(), nil).Once()
			s.mockGenerator.On("GenerateText", mock.Anything, mock.Anything).Return("", tt.err).Times(4)

			resp, err := s.service.Chat(s.ctx, s.userID, dto.ChatRequest{Message: "hello"})

			s.Require().NoError(err)
			s.True(resp.Message.IsError)
			s.Equal(string(tt.wantType), resp.Message.ErrorType)
			s.Equal(tt.wantMsg, resp.Message.Content)
		})
	}
}

func (s *AssistantServiceTestSuite) TestChat_EmptyMessageShortCircuits() {
	resp, err := s.service.Chat(s.ctx, s.userID, dto.ChatRequest{Message: "   \n\t  "})

	s.Require().NoError(err)
	s.True(resp.Message.IsError)
	s.Equal(string(domain.ErrorTypeValidation), resp.Message.ErrorType)
	s.Equal("Please enter a question so I can help with your finances.", resp.Message.Content)

	// No quota spent, no data fetched.
	s.mockGenerator.AssertNotCalled(s.T(), "GenerateText", mock.Anything, mock.Anything)
	s.mockBuilder.AssertNotCalled(s.T(), "BuildFinancialContext", mock.Anything, mock.Anything)
}

func (s *AssistantServiceTestSuite) TestChat_ContextBuildFailureSurfaces() {
	s.mockBuilder.On("BuildFinancialContext", s.ctx, s.userID).Return(nil, errors.New("db down")).Once()

	resp, err := s.service.Chat(s.ctx, s.userID, dto.ChatRequest{Message: "hello"})

	s.Require().Error(err)
	s.Nil(resp)
	s.mockGenerator.AssertNotCalled(s.T(), "GenerateText", mock.Anything, mock.Anything)
}

func (s *AssistantServiceTestSuite) TestChat_SkipFinancialContext() {
	skip := false
	s.mockGenerator.On("GenerateText", mock.Anything, mock.Anything).Return("General advice.", nil).Once()

	resp, err := s.service.Chat(s.ctx, s.userID, dto.ChatRequest{
		Message: "What is compound interest?",
		Options: &dto.ChatOptions{IncludeFinancialContext: &skip},
	})

	s.Require().NoError(err)
	s.Equal("General advice.", resp.Message.Content)
	s.mockBuilder.AssertNotCalled(s.T(), "BuildFinancialContext", mock.Anything, mock.Anything)
}

func (s *AssistantServiceTestSuite) TestChat_BackoffIsCapped() {
	svc := services.NewAssistantService(
		s.mockGenerator,
		s.mockBuilder,
		s.conversations,
		services.WithRetryPolicy(5, 4*time.Second, 10*time.Second),
		services.WithSleepFunc(func(ctx context.Context, d time.Duration) error {
			s.recordedSleeps = append(s.recordedSleeps, d)
			return nil
		}),
	)

	s.mockBuilder.On("BuildFinancialContext", s.ctx, s.userID).Return(healthyContext(), nil).Once()
	s.mockGenerator.On("GenerateText", mock.Anything, mock.Anything).Return("", errors.New("boom")).Times(6)

	resp, err := svc.Chat(s.ctx, s.userID, dto.ChatRequest{Message: "hello"})

	s.Require().NoError(err)
	s.True(resp.Message.IsError)
	s.Equal([]time.Duration{
		4 * time.Second,
		8 * time.Second,
		10 * time.Second,
		10 * time.Second,
		10 * time.Second,
	}, s.recordedSleeps)
}

func (s *AssistantServiceTestSuite) TestChat_ContinuesConversation() {
	s.mockBuilder.On("BuildFinancialContext", s.ctx, s.userID).Return(healthyContext(), nil).Twice()
	s.mockGenerator.On("GenerateText", mock.Anything, mock.Anything).Return("First answer.", nil).Once()

	first, err := s.service.Chat(s.ctx, s.userID, dto.ChatRequest{Message: "How much did I spend?"})
	s.Require().NoError(err)

	// The second prompt must replay the first exchange.
	s.mockGenerator.On("GenerateText", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return containsAll(prompt, "User: How much did I spend?", "Assistant: First answer.")
	})).Return("Second answer.", nil).Once()

	second, err := s.service.Chat(s.ctx, s.userID, dto.ChatRequest{
		Message:        "And on food?",
		ConversationID: first.ConversationID,
	})
	s.Require().NoError(err)
	s.Equal(first.ConversationID, second.ConversationID)

	conv, err := s.conversations.GetConversation(s.ctx, s.userID, first.ConversationID)
	s.Require().NoError(err)
	s.Len(conv.Messages, 4)

	s.mockGenerator.AssertExpectations(s.T())
}

func (s *AssistantServiceTestSuite) TestHealth() {
	s.mockGenerator.On("Ping", mock.Anything).Return(nil).Once()
	s.NoError(s.service.Health(s.ctx))

	s.mockGenerator.On("Ping", mock.Anything).Return(errors.New("unreachable")).Once()
	s.Error(s.service.Health(s.ctx))
}

func containsAll(text string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(text, p) {
			return false
		}
	}
	return true
}

func TestAssistantServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AssistantServiceTestSuite))
}

// --- Suggestion heuristics ---

func TestSuggestFollowUps(t *testing.T) {
	tests := []struct {
		name string
		fc   *domain.FinancialContext
		want []string
	}{
		{
			name: "nil context falls back to generic questions",
			fc:   nil,
			want: []string{
				"What's my financial health score?",
				"Show me my spending trends",
				"Help me plan next month's budget",
			},
		},
		{
			name: "over budget leads with budget question",
			fc: &domain.FinancialContext{
				TotalIncome:   decimal.NewFromInt(5000),
				TotalExpenses: decimal.NewFromInt(3000),
				NetIncome:     decimal.NewFromInt(2000),
				SavingsRate:   40,
				CategoryBreakdown: []domain.CategorySpend{
					{Category: "Food", Amount: decimal.NewFromInt(1200)},
				},
				BudgetPerformances: []domain.BudgetPerformance{
					{Category: "Food", Budgeted: decimal.NewFromInt(1000), Spent: decimal.NewFromInt(1200), PercentageUsed: 120},
				},
			},
			want: []string{
				"How can I stay within my Food budget?",
				"How can I reduce my Food spending?",
				"What's my financial health score?",
				"Show me my spending trends",
			},
		},
		{
			name: "struggling finances fill all four heuristics",
			fc: &domain.FinancialContext{
				TotalIncome:   decimal.NewFromInt(2000),
				TotalExpenses: decimal.NewFromInt(2500),
				NetIncome:     decimal.NewFromInt(-500),
				SavingsRate:   -25,
				CategoryBreakdown: []domain.CategorySpend{
					{Category: "Rent", Amount: decimal.NewFromInt(1500)},
					{Category: "Food", Amount: decimal.NewFromInt(1000)},
				},
				BudgetPerformances: []domain.BudgetPerformance{
					{Category: "Rent", Budgeted: decimal.NewFromInt(1000), Spent: decimal.NewFromInt(1500), PercentageUsed: 150},
				},
			},
			want: []string{
				"How can I stay within my Rent budget?",
				"How can I reduce my Rent spending?",
				"What can I do to improve my savings rate?",
				"How can I improve my overall financial situation?",
			},
		},
		{
			name: "healthy finances use top category plus fallbacks",
			fc: &domain.FinancialContext{
				TotalIncome:   decimal.NewFromInt(5000),
				TotalExpenses: decimal.NewFromInt(2000),
				NetIncome:     decimal.NewFromInt(3000),
				SavingsRate:   60,
				CategoryBreakdown: []domain.CategorySpend{
					{Category: "Transport", Amount: decimal.NewFromInt(300)},
					{Category: "Food", Amount: decimal.NewFromInt(900)},
				},
			},
			want: []string{
				"How can I reduce my Food spending?",
				"What's my financial health score?",
				"Show me my spending trends",
				"Help me plan next month's budget",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.SuggestFollowUps(tt.fc)
			if len(got) > 4 {
				t.Fatalf("suggestions exceed cap: %d", len(got))
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("suggestion %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
