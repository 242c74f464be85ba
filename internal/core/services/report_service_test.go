package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finsight-app/finsight_backend/internal/core/domain"
	portssvc "github.com/finsight-app/finsight_backend/internal/core/ports/services"
	"github.com/finsight-app/finsight_backend/internal/core/services"
	"github.com/finsight-app/finsight_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const reportJSON = `{
  "summary": "You saved 40% of your income this month.",
  "highlights": [
    {"title": "Strong savings", "detail": "Savings rate is well above target.", "kind": "positive"}
  ],
  "recommendations": ["Keep your Food spending under control."]
}`

func newReportFixture() (*MockTextGenerator, *MockContextBuilder, portssvc.ReportSvc) {
	gen := new(MockTextGenerator)
	builder := new(MockContextBuilder)
	svc := services.NewReportService(gen, builder,
		services.WithReportSleepFunc(func(ctx context.Context, d time.Duration) error { return nil }))
	return gen, builder, svc
}

func TestGenerateFinancialSummary_Success(t *testing.T) {
	ctx := context.Background()
	gen, builder, svc := newReportFixture()

	fc := healthyContext()
	builder.On("BuildFinancialContext", ctx, "user-1").Return(fc, nil).Once()
	gen.On("GenerateText", mock.Anything, mock.Anything).Return(reportJSON, nil).Once()

	resp, err := svc.GenerateFinancialSummary(ctx, "user-1", dto.GenerateReportRequest{})

	require.NoError(t, err)
	assert.Equal(t, "You saved 40% of your income this month.", resp.Summary)
	require.Len(t, resp.Highlights, 1)
	assert.Equal(t, "Strong savings", resp.Highlights[0].Title)
	assert.Equal(t, []string{"Keep your Food spending under control."}, resp.Recommendations)
	assert.True(t, fc.TotalIncome.Equal(resp.TotalIncome))
	assert.True(t, fc.NetIncome.Equal(resp.NetIncome))
	assert.Equal(t, fc.SavingsRate, resp.SavingsRate)
	assert.False(t, resp.GeneratedAt.IsZero())
}

func TestGenerateFinancialSummary_FencedJSON(t *testing.T) {
	ctx := context.Background()
	gen, builder, svc := newReportFixture()

	builder.On("BuildFinancialContext", ctx, "user-1").Return(healthyContext(), nil).Once()
	gen.On("GenerateText", mock.Anything, mock.Anything).Return("```json\n"+reportJSON+"\n```", nil).Once()

	resp, err := svc.GenerateFinancialSummary(ctx, "user-1", dto.GenerateReportRequest{})

	require.NoError(t, err)
	assert.Equal(t, "You saved 40% of your income this month.", resp.Summary)
}

func TestGenerateFinancialSummary_RawTextFallback(t *testing.T) {
	ctx := context.Background()
	gen, builder, svc := newReportFixture()

	builder.On("BuildFinancialContext", ctx, "user-1").Return(healthyContext(), nil).Once()
	gen.On("GenerateText", mock.Anything, mock.Anything).
		Return("  Your finances look healthy overall.  ", nil).Once()

	resp, err := svc.GenerateFinancialSummary(ctx, "user-1", dto.GenerateReportRequest{})

	// Prose instead of JSON is still a usable report, not an error.
	require.NoError(t, err)
	assert.Equal(t, "Your finances look healthy overall.", resp.Summary)
	assert.Empty(t, resp.Highlights)
	assert.Empty(t, resp.Recommendations)
}

func TestGenerateFinancialSummary_RetriesThenSucceeds(t *testing.T) {
	ctx := context.Background()
	gen, builder, svc := newReportFixture()

	builder.On("BuildFinancialContext", ctx, "user-1").Return(healthyContext(), nil).Once()
	gen.On("GenerateText", mock.Anything, mock.Anything).Return("", errors.New("connection reset")).Twice()
	gen.On("GenerateText", mock.Anything, mock.Anything).Return(reportJSON, nil).Once()

	resp, err := svc.GenerateFinancialSummary(ctx, "user-1", dto.GenerateReportRequest{})

	require.NoError(t, err)
	assert.Equal(t, "You saved 40% of your income this month.", resp.Summary)
	gen.AssertNumberOfCalls(t, "GenerateText", 3)
}

func TestGenerateFinancialSummary_ContextFailure(t *testing.T) {
	ctx := context.Background()
	gen, builder, svc := newReportFixture()

	builder.On("BuildFinancialContext", ctx, "user-1").Return(nil, errors.New("db down")).Once()

	resp, err := svc.GenerateFinancialSummary(ctx, "user-1", dto.GenerateReportRequest{})

	require.Error(t, err)
	assert.Nil(t, resp)
	gen.AssertNotCalled(t, "GenerateText", mock.Anything, mock.Anything)
}

func TestGenerateFinancialSummary_PeriodFilter(t *testing.T) {
	ctx := context.Background()
	gen, builder, svc := newReportFixture()

	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	fc := services.BuildFinancialContext([]domain.Transaction{
		{Date: jan, Description: "Rent Jan", Category: "Housing", Amount: decimal.NewFromInt(1200), Type: domain.Expense},
		{Date: feb, Description: "Rent Feb", Category: "Housing", Amount: decimal.NewFromInt(1300), Type: domain.Expense},
		{Date: feb, Description: "Salary Feb", Category: "Income", Amount: decimal.NewFromInt(4000), Type: domain.Income},
	}, nil)

	builder.On("BuildFinancialContext", ctx, "user-1").Return(fc, nil).Once()
	gen.On("GenerateText", mock.Anything, mock.Anything).Return(reportJSON, nil).Once()

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	resp, err := svc.GenerateFinancialSummary(ctx, "user-1", dto.GenerateReportRequest{PeriodStart: &start})

	// Totals are recomputed from the transactions inside the window.
	require.NoError(t, err)
	assert.True(t, resp.TotalIncome.Equal(decimal.NewFromInt(4000)), "income %s", resp.TotalIncome)
	assert.True(t, resp.TotalExpenses.Equal(decimal.NewFromInt(1300)), "expenses %s", resp.TotalExpenses)
	assert.True(t, resp.NetIncome.Equal(decimal.NewFromInt(2700)), "net %s", resp.NetIncome)
	assert.Equal(t, &start, resp.PeriodStart)
}

func TestGenerateFinancialSummary_DegradedOnExhaustedRetries(t *testing.T) {
	ctx := context.Background()
	gen, builder, svc := newReportFixture()

	fc := healthyContext()
	builder.On("BuildFinancialContext", ctx, "user-1").Return(fc, nil).Once()
	gen.On("GenerateText", mock.Anything, mock.Anything).Return("", errors.New("googleapi: quota exceeded")).Times(4)

	resp, err := svc.GenerateFinancialSummary(ctx, "user-1", dto.GenerateReportRequest{})

	// Exhausting the retries yields a degraded report, not an error: the
	// computed totals survive and the failure is classified for the client.
	require.NoError(t, err)
	assert.True(t, resp.IsError)
	assert.Equal(t, string(domain.ErrorTypeRateLimit), resp.ErrorType)
	assert.NotEmpty(t, resp.Summary)
	assert.True(t, fc.TotalIncome.Equal(resp.TotalIncome))
	assert.True(t, fc.NetIncome.Equal(resp.NetIncome))
	gen.AssertNumberOfCalls(t, "GenerateText", 4)
}

func TestGenerateFinancialSummary_DegradedClassification(t *testing.T) {
	tests := []struct {
		name     string
		errText  string
		expected domain.ErrorType
	}{
		{"provider outage", "503 service unavailable", domain.ErrorTypeAPI},
		{"network failure", "network is unreachable", domain.ErrorTypeNetwork},
		{"rate limited", "rate limit exceeded", domain.ErrorTypeRateLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			gen, builder, svc := newReportFixture()

			builder.On("BuildFinancialContext", ctx, "user-1").Return(healthyContext(), nil).Once()
			gen.On("GenerateText", mock.Anything, mock.Anything).Return("", errors.New(tt.errText)).Times(4)

			resp, err := svc.GenerateFinancialSummary(ctx, "user-1", dto.GenerateReportRequest{})

			require.NoError(t, err)
			assert.True(t, resp.IsError)
			assert.Equal(t, string(tt.expected), resp.ErrorType)
		})
	}
}
