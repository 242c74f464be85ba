package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finsight-app/finsight_backend/internal/apperrors"
	"github.com/finsight-app/finsight_backend/internal/core/domain"
	portsrepo "github.com/finsight-app/finsight_backend/internal/core/ports/repositories"
	portssvc "github.com/finsight-app/finsight_backend/internal/core/ports/services"
	"github.com/finsight-app/finsight_backend/internal/core/services"
	"github.com/finsight-app/finsight_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock TransactionRepositoryFacade ---

type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) FindTransactionByID(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, transactionID)
	var txn *domain.Transaction
	if args.Get(0) != nil {
		txn = args.Get(0).(*domain.Transaction)
	}
	return txn, args.Error(1)
}

func (m *MockTransactionRepo) ListTransactions(ctx context.Context, userID string, filter portsrepo.TransactionListFilter, limit int, nextToken string) ([]domain.Transaction, string, error) {
	args := m.Called(ctx, userID, filter, limit, nextToken)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	return txns, args.String(1), args.Error(2)
}

func (m *MockTransactionRepo) ListAllTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, userID)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	return txns, args.Error(1)
}

func (m *MockTransactionRepo) SumExpensesByCategory(ctx context.Context, userID, category string) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, category)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepo) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepo) SaveTransactions(ctx context.Context, txns []domain.Transaction) error {
	args := m.Called(ctx, txns)
	return args.Error(0)
}

func (m *MockTransactionRepo) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepo) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	args := m.Called(ctx, userID, transactionID)
	return args.Error(0)
}

// --- Mock BudgetWriter ---

type MockBudgetWriter struct {
	mock.Mock
}

func (m *MockBudgetWriter) SaveBudget(ctx context.Context, budget domain.Budget) error {
	args := m.Called(ctx, budget)
	return args.Error(0)
}

func (m *MockBudgetWriter) UpdateBudget(ctx context.Context, budget domain.Budget) error {
	args := m.Called(ctx, budget)
	return args.Error(0)
}

func (m *MockBudgetWriter) DeleteBudget(ctx context.Context, userID, budgetID string) error {
	args := m.Called(ctx, userID, budgetID)
	return args.Error(0)
}

func (m *MockBudgetWriter) RecomputeSpent(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- Tests ---

const extractionJSON = `[
  {"date": "2026-01-05", "description": "GROCERY MART", "category": "Food", "amount": 54.20, "type": "expense", "confidence": 0.95},
  {"date": "2026-01-06", "description": "SALARY JAN", "category": "Income", "amount": 3000, "type": "income", "confidence": 0.99},
  {"date": "2026-01-07", "description": "UNKNOWN VENDOR", "category": "Other", "amount": 12.00, "type": "expense", "confidence": 0.30},
  {"date": "not-a-date", "description": "GARBLED ROW", "category": "Other", "amount": 5, "type": "expense", "confidence": 0.9}
]`

func newImportFixture(t *testing.T) (*MockTextGenerator, *MockTransactionRepo, *MockBudgetWriter, portssvc.ImportSvc) {
	t.Helper()
	gen := new(MockTextGenerator)
	txnRepo := new(MockTransactionRepo)
	budgetRepo := new(MockBudgetWriter)
	svc := services.NewImportService(gen, txnRepo, budgetRepo,
		services.WithImportSleepFunc(func(ctx context.Context, d time.Duration) error { return nil }))
	return gen, txnRepo, budgetRepo, svc
}

func TestImportStatement_Success(t *testing.T) {
	ctx := context.Background()
	gen, txnRepo, budgetRepo, svc := newImportFixture(t)

	gen.On("GenerateText", mock.Anything, mock.Anything).Return(extractionJSON, nil).Once()
	txnRepo.On("SaveTransactions", ctx, mock.MatchedBy(func(txns []domain.Transaction) bool {
		return len(txns) == 2
	})).Return(nil).Once()
	budgetRepo.On("RecomputeSpent", ctx, "user-1").Return(nil).Once()

	resp, err := svc.ImportStatement(ctx, "user-1", dto.ImportStatementRequest{
		StatementText: "raw statement text",
	})

	require.NoError(t, err)
	// Two rows above the default 0.5 threshold; the garbled row is dropped
	// silently, the low-confidence row is surfaced for review.
	require.Len(t, resp.Imported, 2)
	assert.Equal(t, "GROCERY MART", resp.Imported[0].Description)
	assert.Equal(t, "USD", resp.Imported[0].CurrencyCode)
	require.Len(t, resp.Rejected, 1)
	assert.Equal(t, "UNKNOWN VENDOR", resp.Rejected[0].Description)
	assert.Zero(t, resp.SkippedCount)

	txnRepo.AssertExpectations(t)
	budgetRepo.AssertExpectations(t)
}

func TestImportStatement_CustomThreshold(t *testing.T) {
	ctx := context.Background()
	gen, txnRepo, budgetRepo, svc := newImportFixture(t)

	threshold := 0.2
	gen.On("GenerateText", mock.Anything, mock.Anything).Return(extractionJSON, nil).Once()
	txnRepo.On("SaveTransactions", ctx, mock.MatchedBy(func(txns []domain.Transaction) bool {
		return len(txns) == 3
	})).Return(nil).Once()
	budgetRepo.On("RecomputeSpent", ctx, "user-1").Return(nil).Once()

	resp, err := svc.ImportStatement(ctx, "user-1", dto.ImportStatementRequest{
		StatementText:       "raw statement text",
		ConfidenceThreshold: &threshold,
	})

	require.NoError(t, err)
	assert.Len(t, resp.Imported, 3)
	assert.Empty(t, resp.Rejected)
}

func TestImportStatement_SkipDuplicates(t *testing.T) {
	ctx := context.Background()
	gen, txnRepo, budgetRepo, svc := newImportFixture(t)

	existingDate := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	gen.On("GenerateText", mock.Anything, mock.Anything).Return(extractionJSON, nil).Once()
	txnRepo.On("ListAllTransactions", ctx, "user-1").Return([]domain.Transaction{
		{
			Date:        existingDate,
			Description: "grocery mart",
			Amount:      decimal.NewFromFloat(54.20),
			Type:        domain.Expense,
		},
	}, nil).Once()
	txnRepo.On("SaveTransactions", ctx, mock.MatchedBy(func(txns []domain.Transaction) bool {
		return len(txns) == 1 && txns[0].Description == "SALARY JAN"
	})).Return(nil).Once()
	budgetRepo.On("RecomputeSpent", ctx, "user-1").Return(nil).Once()

	resp, err := svc.ImportStatement(ctx, "user-1", dto.ImportStatementRequest{
		StatementText:  "raw statement text",
		SkipDuplicates: true,
	})

	require.NoError(t, err)
	// Matching is date + amount + case-insensitive description.
	assert.Len(t, resp.Imported, 1)
	assert.Equal(t, 1, resp.SkippedCount)
}

func TestImportStatement_EmptyText(t *testing.T) {
	ctx := context.Background()
	gen, _, _, svc := newImportFixture(t)

	resp, err := svc.ImportStatement(ctx, "user-1", dto.ImportStatementRequest{StatementText: "   "})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Nil(t, resp)
	gen.AssertNotCalled(t, "GenerateText", mock.Anything, mock.Anything)
}

func TestImportStatement_ModelFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	gen, txnRepo, _, svc := newImportFixture(t)

	gen.On("GenerateText", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded")).Times(4)

	resp, err := svc.ImportStatement(ctx, "user-1", dto.ImportStatementRequest{StatementText: "statement"})

	// Unlike chat, import has no degraded mode; the caller sees the failure.
	require.Error(t, err)
	assert.Nil(t, resp)
	txnRepo.AssertNotCalled(t, "SaveTransactions", mock.Anything, mock.Anything)
}

func TestImportStatement_FencedJSON(t *testing.T) {
	ctx := context.Background()
	gen, txnRepo, budgetRepo, svc := newImportFixture(t)

	fenced := "```json\n" + extractionJSON + "\n```"
	gen.On("GenerateText", mock.Anything, mock.Anything).Return(fenced, nil).Once()
	txnRepo.On("SaveTransactions", ctx, mock.Anything).Return(nil).Once()
	budgetRepo.On("RecomputeSpent", ctx, "user-1").Return(nil).Once()

	resp, err := svc.ImportStatement(ctx, "user-1", dto.ImportStatementRequest{StatementText: "statement"})

	require.NoError(t, err)
	assert.Len(t, resp.Imported, 2)
}

func TestImportStatement_UnparseableOutput(t *testing.T) {
	ctx := context.Background()
	gen, txnRepo, _, svc := newImportFixture(t)

	gen.On("GenerateText", mock.Anything, mock.Anything).Return("Sorry, I cannot do that.", nil).Once()

	resp, err := svc.ImportStatement(ctx, "user-1", dto.ImportStatementRequest{StatementText: "statement"})

	require.Error(t, err)
	assert.Nil(t, resp)
	txnRepo.AssertNotCalled(t, "SaveTransactions", mock.Anything, mock.Anything)
}
