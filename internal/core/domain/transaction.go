package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether a transaction is money in or money out.
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// Transaction represents a single dated money movement owned by one user.
type Transaction struct {
	TransactionID string          `json:"transactionID"` // Primary Key (UUID)
	UserID        string          `json:"userID"`        // Owner (Not Null)
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Category      string          `json:"category"` // Verbatim category string, no normalization
	Amount        decimal.Decimal `json:"amount"`   // Positive value; precise decimal type
	Type          TransactionType `json:"type"`     // income or expense (Not Null)
	CurrencyCode  string          `json:"currencyCode"`
	AuditFields
}
