package services

import (
	"context"

	"github.com/finsight-app/finsight_backend/internal/dto"
)

// ReportSvc generates narrative financial reports from the user's data.
type ReportSvc interface {
	// GenerateFinancialSummary builds the user's financial context and asks
	// the model for a structured summary report.
	GenerateFinancialSummary(ctx context.Context, userID string, req dto.GenerateReportRequest) (*dto.FinancialReportResponse, error)
}

// ImportSvc extracts transactions from raw bank statement text.
type ImportSvc interface {
	// ImportStatement parses statement text via the model and persists the
	// extracted transactions, honoring the request's duplicate and
	// confidence settings.
	ImportStatement(ctx context.Context, userID string, req dto.ImportStatementRequest) (*dto.ImportStatementResponse, error)
}
