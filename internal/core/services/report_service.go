package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/finsight-app/finsight_backend/internal/core/domain"
	"github.com/finsight-app/finsight_backend/internal/core/ports"
	portssvc "github.com/finsight-app/finsight_backend/internal/core/ports/services"
	"github.com/finsight-app/finsight_backend/internal/dto"
)

// reportService implements the ReportSvc interface. It shares the assistant's
// retry behavior through the same generator call path.
type reportService struct {
	BaseService
	generator      ports.TextGenerator
	contextBuilder portssvc.ContextBuilderSvc

	callTimeout    time.Duration
	extraRetries   int
	initialBackoff time.Duration
	backoffCap     time.Duration
	sleep          func(ctx context.Context, d time.Duration) error
}

// NewReportService creates a new report service
func NewReportService(generator ports.TextGenerator, contextBuilder portssvc.ContextBuilderSvc, options ...ReportOption) portssvc.ReportSvc {
	svc := &reportService{
		generator:      generator,
		contextBuilder: contextBuilder,
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

// ReportOption is a functional option for configuring the report service
type ReportOption func(*reportService)

// WithReportCallTimeout overrides the per-attempt timeout on the model call.
func WithReportCallTimeout(d time.Duration) ReportOption {
	return func(s *reportService) {
		if d > 0 {
			s.callTimeout = d
		}
	}
}

// WithReportSleepFunc replaces the inter-attempt sleep for tests.
func WithReportSleepFunc(fn func(ctx context.Context, d time.Duration) error) ReportOption {
	return func(s *reportService) {
		if fn != nil {
			s.sleep = fn
		}
	}
}

// Ensure reportService implements portssvc.ReportSvc
var _ portssvc.ReportSvc = (*reportService)(nil)

// reportPayload is the JSON shape requested from the model.
type reportPayload struct {
	Summary         string                `json:"summary"`
	Highlights      []dto.ReportHighlight `json:"highlights"`
	Recommendations []string              `json:"recommendations"`
}

func (s *reportService) GenerateFinancialSummary(ctx context.Context, userID string, req dto.GenerateReportRequest) (*dto.FinancialReportResponse, error) {
	fc, err := s.contextBuilder.BuildFinancialContext(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build financial context for report: %w", err)
	}

	if req.PeriodStart != nil || req.PeriodEnd != nil {
		fc = filterContextToPeriod(fc, req.PeriodStart, req.PeriodEnd)
	}

	prompt := buildReportPrompt(fc)

	text, attempts, err := s.callWithRetry(ctx, prompt)
	if err != nil {
		// Degraded path: the caller still gets the computed totals plus a
		// classified explanation instead of an error.
		errType := classifyError(err)
		s.LogError(ctx, err, "Report generation failed",
			slog.Int("attempts", attempts),
			slog.String("error_type", string(errType)))
		return &dto.FinancialReportResponse{
			GeneratedAt:   time.Now(),
			PeriodStart:   req.PeriodStart,
			PeriodEnd:     req.PeriodEnd,
			TotalIncome:   fc.TotalIncome,
			TotalExpenses: fc.TotalExpenses,
			NetIncome:     fc.NetIncome,
			SavingsRate:   fc.SavingsRate,
			Summary:       errorMessages[errType],
			IsError:       true,
			ErrorType:     string(errType),
		}, nil
	}

	var payload reportPayload
	if err := json.Unmarshal([]byte(stripJSONFences(text)), &payload); err != nil {
		s.LogWarn(ctx, "Report response was not valid JSON, using raw text as summary")
		payload = reportPayload{Summary: strings.TrimSpace(text)}
	}

	return &dto.FinancialReportResponse{
		GeneratedAt:     time.Now(),
		PeriodStart:     req.PeriodStart,
		PeriodEnd:       req.PeriodEnd,
		TotalIncome:     fc.TotalIncome,
		TotalExpenses:   fc.TotalExpenses,
		NetIncome:       fc.NetIncome,
		SavingsRate:     fc.SavingsRate,
		Summary:         payload.Summary,
		Highlights:      payload.Highlights,
		Recommendations: payload.Recommendations,
	}, nil
}

// callWithRetry mirrors the assistant's retry loop: uniform retries with
// exponential backoff and a hard per-attempt timeout.
func (s *reportService) callWithRetry(ctx context.Context, prompt string) (string, int, error) {
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

// filterContextToPeriod rebuilds the context from only the transactions
// falling inside the requested period.
func filterContextToPeriod(fc *domain.FinancialContext, start, end *time.Time) *domain.FinancialContext {
	filtered := make([]domain.Transaction, 0, len(fc.Transactions))
	for _, txn := range fc.Transactions {
		if start != nil && txn.Date.Before(*start) {
			continue
		}
		if end != nil && txn.Date.After(*end) {
			continue
		}
		filtered = append(filtered, txn)
	}
	return BuildFinancialContext(filtered, fc.Budgets)
}

// stripJSONFences removes markdown code fences models sometimes wrap JSON in
// despite instructions.
func stripJSONFences(text string) string {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}
