package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/finsight-app/finsight_backend/internal/core/domain"
	portssvc "github.com/finsight-app/finsight_backend/internal/core/ports/services"
	"github.com/finsight-app/finsight_backend/internal/dto"
	"github.com/finsight-app/finsight_backend/internal/handlers"
	"github.com/finsight-app/finsight_backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AssistantService ---
type MockAssistantService struct {
	mock.Mock
}

func (m *MockAssistantService) Chat(ctx context.Context, userID string, req dto.ChatRequest) (*dto.ChatResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ChatResponse), args.Error(1)
}
func (m *MockAssistantService) GetConversation(ctx context.Context, userID, conversationID string) (*domain.ChatConversation, error) {
	args := m.Called(ctx, userID, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatConversation), args.Error(1)
}
func (m *MockAssistantService) ListConversations(ctx context.Context, userID string) ([]domain.ChatConversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChatConversation), args.Error(1)
}
func (m *MockAssistantService) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	args := m.Called(ctx, userID, conversationID)
	return args.Error(0)
}
func (m *MockAssistantService) Health(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portssvc.AssistantSvc = (*MockAssistantService)(nil)

// --- Test Suite ---
type ChatHandlerTestSuite struct {
	suite.Suite
	router        *gin.Engine
	mockAssistant *MockAssistantService
	jwtSecret     string
}

// generateTestToken creates a dummy JWT for testing.
func (suite *ChatHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "finsight-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *ChatHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockAssistant = new(MockAssistantService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterChatRoutes(v1, suite.mockAssistant)
}

func (suite *ChatHandlerTestSuite) postChat(token, message string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(dto.ChatRequest{Message: message})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func assistantReply(content string) *dto.ChatResponse {
	return &dto.ChatResponse{
		ConversationID: "conv-1",
		Message: dto.ChatMessageResponse{
			MessageID: "m1",
			Content:   content,
			Timestamp: time.Now(),
		},
	}
}

// --- Test Cases ---

func (suite *ChatHandlerTestSuite) TestChat_Success() {
	token := suite.generateTestToken("user-1")
	suite.mockAssistant.On("Chat", mock.Anything, "user-1", mock.Anything).
		Return(assistantReply("You spent $300 on food."), nil).Once()

	w := suite.postChat(token, "How much did I spend on food?")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ChatResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("You spent $300 on food.", resp.Message.Content)
	suite.mockAssistant.AssertExpectations(suite.T())
}

func (suite *ChatHandlerTestSuite) TestChat_Unauthorized() {
	w := suite.postChat("not-a-valid-token", "hello")
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *ChatHandlerTestSuite) TestChat_PerIPRateLimit() {
	token := suite.generateTestToken("user-1")
	suite.mockAssistant.On("Chat", mock.Anything, "user-1", mock.Anything).
		Return(assistantReply("ok"), nil)

	// 30 messages per minute per IP, then 429 without reaching the service.
	for i := 0; i < 30; i++ {
		w := suite.postChat(token, "hello")
		suite.Equal(http.StatusOK, w.Code, "request %d should pass", i+1)
	}

	w := suite.postChat(token, "hello")
	suite.Equal(http.StatusTooManyRequests, w.Code)
	suite.mockAssistant.AssertNumberOfCalls(suite.T(), "Chat", 30)
}

func (suite *ChatHandlerTestSuite) TestChat_DegradedRateLimitMapsTo429() {
	token := suite.generateTestToken("user-1")
	degraded := assistantReply("I'm receiving too many requests right now. Please wait a moment and try again.")
	degraded.Message.IsError = true
	degraded.Message.ErrorType = string(domain.ErrorTypeRateLimit)
	suite.mockAssistant.On("Chat", mock.Anything, "user-1", mock.Anything).
		Return(degraded, nil).Once()

	w := suite.postChat(token, "hello")

	// The degraded body is returned unchanged, only the status changes.
	suite.Equal(http.StatusTooManyRequests, w.Code)
	var resp dto.ChatResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.Message.IsError)
}

func TestChatHandlerSuite(t *testing.T) {
	suite.Run(t, new(ChatHandlerTestSuite))
}
