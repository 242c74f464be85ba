package dto

import (
	"time"

	"github.com/finsight-app/finsight_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest defines the data needed to record a transaction.
type CreateTransactionRequest struct {
	Date         time.Time              `json:"date" binding:"required"`
	Description  string                 `json:"description" binding:"required"`
	Category     string                 `json:"category" binding:"required"`
	Amount       decimal.Decimal        `json:"amount" binding:"required,decimalpositive"`
	Type         domain.TransactionType `json:"type" binding:"required,oneof=income expense"`
	CurrencyCode string                 `json:"currencyCode"` // defaults to USD when empty
}

// UpdateTransactionRequest defines the data allowed for updating a transaction.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateTransactionRequest struct {
	Date        *time.Time              `json:"date"`
	Description *string                 `json:"description"`
	Category    *string                 `json:"category"`
	Amount      *decimal.Decimal        `json:"amount" binding:"omitempty,decimalpositive"`
	Type        *domain.TransactionType `json:"type" binding:"omitempty,oneof=income expense"`
}

// ListTransactionsRequest defines query parameters for listing transactions.
type ListTransactionsRequest struct {
	Limit     int        `form:"limit,default=20"`
	NextToken string     `form:"nextToken"`
	Category  string     `form:"category"`
	Type      string     `form:"type" binding:"omitempty,oneof=income expense"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
}

// TransactionResponse defines the data returned for a transaction.
// Mirrors domain.Transaction.
type TransactionResponse struct {
	TransactionID string                 `json:"transactionID"`
	Date          time.Time              `json:"date"`
	Description   string                 `json:"description"`
	Category      string                 `json:"category"`
	Amount        decimal.Decimal        `json:"amount"`
	Type          domain.TransactionType `json:"type"`
	CurrencyCode  string                 `json:"currencyCode"`
	CreatedAt     time.Time              `json:"createdAt"`
	LastUpdatedAt time.Time              `json:"lastUpdatedAt"`
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    string                `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: txn.TransactionID,
		Date:          txn.Date,
		Description:   txn.Description,
		Category:      txn.Category,
		Amount:        txn.Amount,
		Type:          txn.Type,
		CurrencyCode:  txn.CurrencyCode,
		CreatedAt:     txn.CreatedAt,
		LastUpdatedAt: txn.LastUpdatedAt,
	}
}

// ToListTransactionsResponse converts a page of domain transactions to the list DTO
func ToListTransactionsResponse(txns []domain.Transaction, nextToken string) ListTransactionsResponse {
	res := make([]TransactionResponse, len(txns))
	for i, txn := range txns {
		res[i] = ToTransactionResponse(&txn)
	}
	return ListTransactionsResponse{
		Transactions: res,
		NextToken:    nextToken,
	}
}
