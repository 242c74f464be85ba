package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/finsight-app/finsight_backend/internal/apperrors"
	portssvc "github.com/finsight-app/finsight_backend/internal/core/ports/services"
	"github.com/finsight-app/finsight_backend/internal/dto"
	"github.com/finsight-app/finsight_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// importHandler handles statement import requests.
type importHandler struct {
	importService portssvc.ImportSvc
}

func newImportHandler(importService portssvc.ImportSvc) *importHandler {
	return &importHandler{importService: importService}
}

// registerImportRoutes registers import routes on the given router group.
func registerImportRoutes(rg *gin.RouterGroup, importService portssvc.ImportSvc) {
	h := newImportHandler(importService)

	imports := rg.Group("/import")
	{
		imports.POST("/statement", h.ImportStatement)
	}
}

// ImportStatement godoc
// @Summary Import transactions from a bank statement
// @Description Extracts transactions from raw statement text via the model and persists the
// @Description ones meeting the confidence threshold. Low-confidence rows are returned for review.
// @Tags import
// @Accept json
// @Produce json
// @Param statement body dto.ImportStatementRequest true "Statement text and import settings"
// @Success 200 {object} dto.ImportStatementResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse "Model provider unavailable"
// @Security BearerAuth
// @Router /import/statement [post]
func (h *importHandler) ImportStatement(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	var req dto.ImportStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	result, err := h.importService.ImportStatement(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to import statement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to import statement"})
		return
	}

	c.JSON(http.StatusOK, result)
}
