package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/finsight-app/finsight_backend/internal/apperrors"
	portssvc "github.com/finsight-app/finsight_backend/internal/core/ports/services"
	"github.com/finsight-app/finsight_backend/internal/dto"
	"github.com/finsight-app/finsight_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// apiTokenHandler handles API token management requests.
type apiTokenHandler struct {
	tokenService portssvc.APITokenSvc
}

func newAPITokenHandler(tokenService portssvc.APITokenSvc) *apiTokenHandler {
	return &apiTokenHandler{tokenService: tokenService}
}

// registerAPITokenRoutes registers API token routes on the given router group.
func registerAPITokenRoutes(rg *gin.RouterGroup, tokenService portssvc.APITokenSvc) {
	h := newAPITokenHandler(tokenService)

	tokens := rg.Group("/tokens")
	{
		tokens.POST("", h.CreateToken)
		tokens.GET("", h.ListTokens)
		tokens.DELETE("/:tokenID", h.RevokeToken)
		tokens.DELETE("", h.RevokeAllTokens)
	}
}

// CreateToken godoc
// @Summary Create API token
// @Description Creates a new API token. The plaintext token is only returned once.
// @Tags tokens
// @Accept json
// @Produce json
// @Param token body dto.CreateAPITokenRequest true "Token name and optional expiry"
// @Success 201 {object} dto.APITokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /tokens [post]
func (h *apiTokenHandler) CreateToken(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	var req dto.CreateAPITokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	var expiresIn *time.Duration
	if req.ExpiresIn != nil {
		d := time.Duration(*req.ExpiresIn) * time.Second
		if d <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "expiresIn must be positive"})
			return
		}
		expiresIn = &d
	}

	plaintext, token, err := h.tokenService.CreateToken(c.Request.Context(), userID, req.Name, expiresIn)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to create API token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create API token"})
		return
	}

	resp := dto.ToAPITokenResponse(token)
	resp.Token = plaintext
	c.JSON(http.StatusCreated, resp)
}

// ListTokens godoc
// @Summary List API tokens
// @Description Lists the user's API tokens. Plaintext token values are never included.
// @Tags tokens
// @Produce json
// @Success 200 {array} dto.APITokenResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /tokens [get]
func (h *apiTokenHandler) ListTokens(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	tokens, err := h.tokenService.ListTokens(c.Request.Context(), userID)
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to list API tokens", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list API tokens"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListAPITokensResponse(tokens))
}

// RevokeToken godoc
// @Summary Revoke API token
// @Description Revokes a single API token owned by the authenticated user.
// @Tags tokens
// @Produce json
// @Param tokenID path string true "Token ID"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /tokens/{tokenID} [delete]
func (h *apiTokenHandler) RevokeToken(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}
	tokenID := c.Param("tokenID")

	if err := h.tokenService.RevokeToken(c.Request.Context(), userID, tokenID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Token not found"})
			return
		}
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to revoke API token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to revoke API token"})
		return
	}

	c.Status(http.StatusNoContent)
}

// RevokeAllTokens godoc
// @Summary Revoke all API tokens
// @Description Revokes every API token owned by the authenticated user.
// @Tags tokens
// @Produce json
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /tokens [delete]
func (h *apiTokenHandler) RevokeAllTokens(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	if err := h.tokenService.RevokeAllTokens(c.Request.Context(), userID); err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to revoke API tokens", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to revoke API tokens"})
		return
	}

	c.Status(http.StatusNoContent)
}
