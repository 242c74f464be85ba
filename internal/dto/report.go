package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// GenerateReportRequest defines the parameters for a financial summary report.
type GenerateReportRequest struct {
	PeriodStart *time.Time `json:"periodStart"`
	PeriodEnd   *time.Time `json:"periodEnd"`
}

// ReportHighlight is one model-generated observation in a report.
type ReportHighlight struct {
	Title           string `json:"title"`
	Detail          string `json:"detail"`
	Kind            string `json:"kind"` // e.g. "positive", "warning", "neutral"
	RelatedCategory string `json:"relatedCategory,omitempty"`
}

// FinancialReportResponse defines a generated financial summary.
type FinancialReportResponse struct {
	GeneratedAt     time.Time         `json:"generatedAt"`
	PeriodStart     *time.Time        `json:"periodStart,omitempty"`
	PeriodEnd       *time.Time        `json:"periodEnd,omitempty"`
	TotalIncome     decimal.Decimal   `json:"totalIncome"`
	TotalExpenses   decimal.Decimal   `json:"totalExpenses"`
	NetIncome       decimal.Decimal   `json:"netIncome"`
	SavingsRate     float64           `json:"savingsRate"`
	Summary         string            `json:"summary"`
	Highlights      []ReportHighlight `json:"highlights,omitempty"`
	Recommendations []string          `json:"recommendations,omitempty"`
	IsError         bool              `json:"isError,omitempty"`
	ErrorType       string            `json:"errorType,omitempty"`
}
