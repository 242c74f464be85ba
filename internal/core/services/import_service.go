package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/finsight-app/finsight_backend/internal/apperrors"
	"github.com/finsight-app/finsight_backend/internal/core/domain"
	"github.com/finsight-app/finsight_backend/internal/core/ports"
	portsrepo "github.com/finsight-app/finsight_backend/internal/core/ports/repositories"
	portssvc "github.com/finsight-app/finsight_backend/internal/core/ports/services"
	"github.com/finsight-app/finsight_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultConfidenceThreshold = 0.5

// importService implements the ImportSvc interface.
type importService struct {
	BaseService
	generator  ports.TextGenerator
	txnRepo    portsrepo.TransactionRepositoryFacade
	budgetRepo portsrepo.BudgetWriter

	callTimeout    time.Duration
	extraRetries   int
	initialBackoff time.Duration
	backoffCap     time.Duration
	sleep          func(ctx context.Context, d time.Duration) error
}

// ImportOption is a functional option for configuring the import service
type ImportOption func(*importService)

// WithImportCallTimeout overrides the per-attempt timeout on the model call.
func WithImportCallTimeout(d time.Duration) ImportOption {
	return func(s *importService) {
		if d > 0 {
			s.callTimeout = d
		}
	}
}

// WithImportSleepFunc replaces the inter-attempt sleep for tests.
func WithImportSleepFunc(fn func(ctx context.Context, d time.Duration) error) ImportOption {
	return func(s *importService) {
		if fn != nil {
			s.sleep = fn
		}
	}
}

// NewImportService creates a new statement import service
func NewImportService(generator ports.TextGenerator, txnRepo portsrepo.TransactionRepositoryFacade, budgetRepo portsrepo.BudgetWriter, options ...ImportOption) portssvc.ImportSvc {
	svc := &importService{
		generator:      generator,
		txnRepo:        txnRepo,
		budgetRepo:     budgetRepo,
		callTimeout:    defaultCallTimeout,
		extraRetries:   defaultExtraRetries,
		initialBackoff: defaultInitialBackoff,
		backoffCap:     defaultBackoffCap,
		sleep:          sleepContext,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure importService implements portssvc.ImportSvc
var _ portssvc.ImportSvc = (*importService)(nil)

// extractedRow is the JSON element shape requested from the model.
type extractedRow struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Confidence  float64 `json:"confidence"`
}

func (s *importService) ImportStatement(ctx context.Context, userID string, req dto.ImportStatementRequest) (*dto.ImportStatementResponse, error) {
	if strings.TrimSpace(req.StatementText) == "" {
		return nil, fmt.Errorf("statement text is empty: %w", apperrors.ErrValidation)
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultCurrencyCode
	}
	threshold := defaultConfidenceThreshold
	if req.ConfidenceThreshold != nil {
		threshold = *req.ConfidenceThreshold
	}

	prompt := buildImportPrompt(req.StatementText, req.DateFormat, currency)

	text, attempts, err := s.callWithRetry(ctx, prompt)
	if err != nil {
		s.LogError(ctx, err, "Statement extraction failed", slog.Int("attempts", attempts))
		return nil, fmt.Errorf("statement extraction failed: %w", err)
	}

	var rows []extractedRow
	if err := json.Unmarshal([]byte(stripJSONFences(text)), &rows); err != nil {
		return nil, fmt.Errorf("model returned unparseable extraction output: %w", err)
	}

	extracted := make([]dto.ExtractedTransaction, 0, len(rows))
	for _, row := range rows {
		parsed, ok := parseExtractedRow(row)
		if !ok {
			continue
		}
		extracted = append(extracted, parsed)
	}

	accepted := make([]dto.ExtractedTransaction, 0, len(extracted))
	rejected := make([]dto.ExtractedTransaction, 0)
	for _, e := range extracted {
		if e.Confidence < threshold {
			rejected = append(rejected, e)
			continue
		}
		accepted = append(accepted, e)
	}

	skipped := 0
	if req.SkipDuplicates {
		accepted, skipped = s.dropDuplicates(ctx, userID, accepted)
	}

	now := time.Now()
	txns := make([]domain.Transaction, 0, len(accepted))
	for _, e := range accepted {
		txns = append(txns, domain.Transaction{
			TransactionID: uuid.NewString(),
			UserID:        userID,
			Date:          e.Date,
			Description:   e.Description,
			Category:      e.Category,
			Amount:        e.Amount,
			Type:          e.Type,
			CurrencyCode:  currency,
			AuditFields:   domain.NewAuditFields(userID, now),
		})
	}

	if len(txns) > 0 {
		if err := s.txnRepo.SaveTransactions(ctx, txns); err != nil {
			return nil, fmt.Errorf("failed to save imported transactions: %w", err)
		}
		if err := s.budgetRepo.RecomputeSpent(ctx, userID); err != nil {
			s.LogWarn(ctx, "Failed to recompute budget spent amounts after import", slog.String("error", err.Error()))
		}
	}

	imported := make([]dto.TransactionResponse, len(txns))
	for i, txn := range txns {
		imported[i] = dto.ToTransactionResponse(&txn)
	}

	s.LogInfo(ctx, "Statement import completed",
		slog.Int("imported", len(imported)),
		slog.Int("skipped", skipped),
		slog.Int("rejected", len(rejected)))

	return &dto.ImportStatementResponse{
		Imported:     imported,
		SkippedCount: skipped,
		Rejected:     rejected,
	}, nil
}

// callWithRetry applies the same uniform retry loop the other AI-facing
// services use.
func (s *importService) callWithRetry(ctx context.Context, prompt string) (string, int, error) {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= s.extraRetries; attempt++ {
		if attempt > 0 {
			delay := s.initialBackoff << (attempt - 1)
			if delay > s.backoffCap {
				delay = s.backoffCap
			}
			if err := s.sleep(ctx, delay); err != nil {
				return "", attempts, fmt.Errorf("canceled while waiting to retry: %w", err)
			}
		}

		attempts++
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		text, err := s.generator.GenerateText(callCtx, prompt)
		cancel()

		if err == nil {
			return text, attempts, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", attempts, fmt.Errorf("request canceled: %w", ctx.Err())
		}
	}

	return "", attempts, lastErr
}

// parseExtractedRow validates one model row. Bad rows are dropped rather
// than failing the whole import.
func parseExtractedRow(row extractedRow) (dto.ExtractedTransaction, bool) {
	date, err := time.Parse("2006-01-02", row.Date)
	if err != nil {
		return dto.ExtractedTransaction{}, false
	}
	if row.Amount <= 0 || row.Description == "" {
		return dto.ExtractedTransaction{}, false
	}

	txnType := domain.TransactionType(strings.ToLower(row.Type))
	if txnType != domain.Income && txnType != domain.Expense {
		return dto.ExtractedTransaction{}, false
	}

	category := row.Category
	if category == "" {
		category = "Other"
	}

	confidence := row.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return dto.ExtractedTransaction{
		Date:        date,
		Description: row.Description,
		Category:    category,
		Amount:      decimal.NewFromFloat(row.Amount),
		Type:        txnType,
		Confidence:  confidence,
	}, true
}

// dropDuplicates removes extracted rows matching an existing transaction on
// date, amount and description.
func (s *importService) dropDuplicates(ctx context.Context, userID string, extracted []dto.ExtractedTransaction) ([]dto.ExtractedTransaction, int) {
	existing, err := s.txnRepo.ListAllTransactions(ctx, userID)
	if err != nil {
		s.LogWarn(ctx, "Failed to load transactions for duplicate check, importing all", slog.String("error", err.Error()))
		return extracted, 0
	}

	seen := make(map[string]bool, len(existing))
	for _, txn := range existing {
		seen[duplicateKey(txn.Date, txn.Amount, txn.Description)] = true
	}

	kept := make([]dto.ExtractedTransaction, 0, len(extracted))
	skipped := 0
	for _, e := range extracted {
		key := duplicateKey(e.Date, e.Amount, e.Description)
		if seen[key] {
			skipped++
			continue
		}
		seen[key] = true
		kept = append(kept, e)
	}
	return kept, skipped
}

func duplicateKey(date time.Time, amount decimal.Decimal, description string) string {
	return fmt.Sprintf("%s|%s|%s", date.Format("2006-01-02"), amount.String(), strings.ToLower(strings.TrimSpace(description)))
}
