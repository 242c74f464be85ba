package dto

import (
	"time"

	"github.com/finsight-app/finsight_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ImportStatementRequest defines the input for LLM-based statement import.
type ImportStatementRequest struct {
	StatementText       string   `json:"statementText" binding:"required"`
	SkipDuplicates      bool     `json:"skipDuplicates"`
	DateFormat          string   `json:"dateFormat"` // hint passed to the model, e.g. "DD/MM/YYYY"
	Currency            string   `json:"currency"`   // defaults to USD when empty
	ConfidenceThreshold *float64 `json:"confidenceThreshold"`
}

// ExtractedTransaction is one transaction the model pulled from the
// statement, with its extraction confidence.
type ExtractedTransaction struct {
	Date        time.Time              `json:"date"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Amount      decimal.Decimal        `json:"amount"`
	Type        domain.TransactionType `json:"type"`
	Confidence  float64                `json:"confidence"`
}

// ImportStatementResponse summarizes an import run.
type ImportStatementResponse struct {
	Imported     []TransactionResponse  `json:"imported"`
	SkippedCount int                    `json:"skippedCount"`
	Rejected     []ExtractedTransaction `json:"rejected,omitempty"`
}
