package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/finsight-app/finsight_backend/internal/apperrors"
	"github.com/finsight-app/finsight_backend/internal/core/domain"
	portssvc "github.com/finsight-app/finsight_backend/internal/core/ports/services"
	"github.com/finsight-app/finsight_backend/internal/dto"
	"github.com/finsight-app/finsight_backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// chatHandler handles assistant chat and conversation management requests.
type chatHandler struct {
	assistantService portssvc.AssistantSvc
}

func newChatHandler(assistantService portssvc.AssistantSvc) *chatHandler {
	return &chatHandler{assistantService: assistantService}
}

// RegisterChatRoutes registers chat routes on the given router group.
func RegisterChatRoutes(rg *gin.RouterGroup, assistantService portssvc.AssistantSvc) {
	h := newChatHandler(assistantService)

	// 30 messages per minute per IP on the model-backed endpoint
	rate, _ := limiter.NewRateFromFormatted("30-M")
	limitMiddleware := middleware.GinMiddlewarize(limiter.New(memory.NewStore(), rate))

	chat := rg.Group("/chat")
	{
		chat.POST("", limitMiddleware, h.Chat)
		chat.GET("", h.ChatHealth)
		chat.GET("/conversations", h.ListConversations)
		chat.GET("/conversations/:conversationID", h.GetConversation)
		chat.DELETE("/conversations/:conversationID", h.DeleteConversation)
	}
}

// Chat godoc
// @Summary Send a message to the assistant
// @Description Answers one user message against the user's financial data. Provider failures
// @Description come back as a degraded 200 whose message carries isError and errorType, except
// @Description upstream rate limiting which maps to 429 and empty messages which map to 400.
// @Tags chat
// @Accept json
// @Produce json
// @Param chat body dto.ChatRequest true "Chat message"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} dto.ChatResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} dto.ChatResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /chat [post]
func (h *chatHandler) Chat(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	resp, err := h.assistantService.Chat(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Chat request failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to process chat message"})
		return
	}

	c.JSON(chatStatusFor(resp), resp)
}

// chatStatusFor maps a degraded assistant reply to its HTTP status. The
// reply body is returned unchanged either way so clients can render the
// assistant's error message.
func chatStatusFor(resp *dto.ChatResponse) int {
	if !resp.Message.IsError {
		return http.StatusOK
	}
	switch resp.Message.ErrorType {
	case string(domain.ErrorTypeValidation):
		return http.StatusBadRequest
	case string(domain.ErrorTypeRateLimit):
		return http.StatusTooManyRequests
	default:
		// Network and API failures stay 200: the client already has a
		// renderable assistant message explaining the problem.
		return http.StatusOK
	}
}

// ChatHealth godoc
// @Summary Assistant health probe
// @Description Checks whether the LLM provider is reachable by issuing a trivial completion.
// @Tags chat
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} ErrorResponse
// @Security BearerAuth
// @Router /chat [get]
func (h *chatHandler) ChatHealth(c *gin.Context) {
	if err := h.assistantService.Health(c.Request.Context()); err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Warn("Assistant health probe failed", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Assistant service unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListConversations godoc
// @Summary List conversations
// @Description Lists the user's conversations, most recently updated first.
// @Tags chat
// @Produce json
// @Success 200 {array} dto.ConversationSummaryResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /chat/conversations [get]
func (h *chatHandler) ListConversations(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	convs, err := h.assistantService.ListConversations(c.Request.Context(), userID)
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to list conversations", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list conversations"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListConversationsResponse(convs))
}

// GetConversation godoc
// @Summary Get conversation
// @Description Returns a conversation with its full message history.
// @Tags chat
// @Produce json
// @Param conversationID path string true "Conversation ID"
// @Success 200 {object} dto.ConversationResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /chat/conversations/{conversationID} [get]
func (h *chatHandler) GetConversation(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}
	conversationID := c.Param("conversationID")

	conv, err := h.assistantService.GetConversation(c.Request.Context(), userID, conversationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Conversation not found"})
			return
		}
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to get conversation", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve conversation"})
		return
	}

	c.JSON(http.StatusOK, dto.ToConversationResponse(conv))
}

// DeleteConversation godoc
// @Summary Delete conversation
// @Description Deletes a conversation owned by the authenticated user.
// @Tags chat
// @Produce json
// @Param conversationID path string true "Conversation ID"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /chat/conversations/{conversationID} [delete]
func (h *chatHandler) DeleteConversation(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}
	conversationID := c.Param("conversationID")

	if err := h.assistantService.DeleteConversation(c.Request.Context(), userID, conversationID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Conversation not found"})
			return
		}
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to delete conversation", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete conversation"})
		return
	}

	c.Status(http.StatusNoContent)
}
