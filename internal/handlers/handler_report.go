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
)

// reportHandler handles financial report generation requests.
type reportHandler struct {
	reportService portssvc.ReportSvc
}

func newReportHandler(reportService portssvc.ReportSvc) *reportHandler {
	return &reportHandler{reportService: reportService}
}

// registerReportRoutes registers report routes on the given router group.
func registerReportRoutes(rg *gin.RouterGroup, reportService portssvc.ReportSvc) {
	h := newReportHandler(reportService)

	reports := rg.Group("/reports")
	{
		reports.POST("/financial-summary", h.GenerateFinancialSummary)
	}
}

// GenerateFinancialSummary godoc
// @Summary Generate financial summary report
// @Description Builds the user's financial context, optionally restricted to a period, and asks the model for a structured summary.
// @Description Provider failures come back as a degraded 200 whose body carries isError and errorType,
// @Description except upstream rate limiting which maps to 429.
// @Tags reports
// @Accept json
// @Produce json
// @Param report body dto.GenerateReportRequest false "Optional reporting period"
// @Success 200 {object} dto.FinancialReportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} dto.FinancialReportResponse
// @Failure 502 {object} ErrorResponse "Financial data unavailable"
// @Security BearerAuth
// @Router /reports/financial-summary [post]
func (h *reportHandler) GenerateFinancialSummary(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	var req dto.GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	report, err := h.reportService.GenerateFinancialSummary(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to generate financial summary", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to generate report"})
		return
	}

	c.JSON(reportStatusFor(report), report)
}

// reportStatusFor mirrors the chat mapping: a degraded report body is
// returned unchanged, and only upstream rate limiting changes the status.
func reportStatusFor(resp *dto.FinancialReportResponse) int {
	if !resp.IsError {
		return http.StatusOK
	}
	switch resp.ErrorType {
	case string(domain.ErrorTypeValidation):
		return http.StatusBadRequest
	case string(domain.ErrorTypeRateLimit):
		return http.StatusTooManyRequests
	default:
		return http.StatusOK
	}
}
