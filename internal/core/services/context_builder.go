package services

import (
	"context"
	"fmt"

	"github.com/finsight-app/finsight_backend/internal/core/domain"
	portsrepo "github.com/finsight-app/finsight_backend/internal/core/ports/repositories"
	portssvc "github.com/finsight-app/finsight_backend/internal/core/ports/services"
	"github.com/finsight-app/finsight_backend/internal/utils/finmath"
	"github.com/shopspring/decimal"
)

const recentTransactionCount = 10

// contextBuilderService implements ContextBuilderSvc. The aggregation itself
// is pure; only the record fetch touches I/O.
type contextBuilderService struct {
	BaseService
	txnRepo    portsrepo.TransactionReader
	budgetRepo portsrepo.BudgetReader
}

// NewContextBuilderService creates a new context builder service
func NewContextBuilderService(txnRepo portsrepo.TransactionReader, budgetRepo portsrepo.BudgetReader) portssvc.ContextBuilderSvc {
	return &contextBuilderService{
		txnRepo:    txnRepo,
		budgetRepo: budgetRepo,
	}
}

// Ensure contextBuilderService implements portssvc.ContextBuilderSvc
var _ portssvc.ContextBuilderSvc = (*contextBuilderService)(nil)

func (s *contextBuilderService) BuildFinancialContext(ctx context.Context, userID string) (*domain.FinancialContext, error) {
	txns, err := s.txnRepo.ListAllTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions for context: %w", err)
	}
	budgets, err := s.budgetRepo.ListAllBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch budgets for context: %w", err)
	}
	return BuildFinancialContext(txns, budgets), nil
}

// BuildFinancialContext aggregates already-scoped records into the derived
// summary consumed by prompts. Pure function: deterministic, no I/O, and it
// never fails — malformed amounts contribute zero rather than erroring.
func BuildFinancialContext(txns []domain.Transaction, budgets []domain.Budget) *domain.FinancialContext {
	fc := &domain.FinancialContext{
		Transactions: txns,
		Budgets:      budgets,
	}

	// Category buckets keep first-encounter order; the key is the category
	// string verbatim, so case or spacing differences stay distinct.
	categoryIndex := make(map[string]int)

	for _, txn := range txns {
		switch txn.Type {
		case domain.Income:
			fc.TotalIncome = fc.TotalIncome.Add(txn.Amount)
		case domain.Expense:
			fc.TotalExpenses = fc.TotalExpenses.Add(txn.Amount)
			if idx, ok := categoryIndex[txn.Category]; ok {
				fc.CategoryBreakdown[idx].Amount = fc.CategoryBreakdown[idx].Amount.Add(txn.Amount)
			} else {
				categoryIndex[txn.Category] = len(fc.CategoryBreakdown)
				fc.CategoryBreakdown = append(fc.CategoryBreakdown, domain.CategorySpend{
					Category: txn.Category,
					Amount:   txn.Amount,
				})
			}
		}
	}

	fc.NetIncome = finmath.NetIncome(fc.TotalIncome, fc.TotalExpenses)
	fc.SavingsRate = finmath.SavingsRate(fc.TotalIncome, fc.TotalExpenses)

	// Transactions arrive newest first from the repository; for safety the
	// pure path does not assume it and takes the most recent by date.
	fc.RecentTransactions = mostRecent(txns, recentTransactionCount)

	fc.BudgetPerformances = make([]domain.BudgetPerformance, 0, len(budgets))
	for _, budget := range budgets {
		spent := sumExpensesForCategory(txns, budget.Category)
		fc.BudgetPerformances = append(fc.BudgetPerformances, domain.BudgetPerformance{
			Category:       budget.Category,
			Budgeted:       budget.BudgetAmount,
			Spent:          spent,
			PercentageUsed: finmath.PercentageOf(spent, budget.BudgetAmount),
		})
	}

	return fc
}

func sumExpensesForCategory(txns []domain.Transaction, category string) decimal.Decimal {
	sum := decimal.Zero
	for _, txn := range txns {
		if txn.Type == domain.Expense && txn.Category == category {
			sum = sum.Add(txn.Amount)
		}
	}
	return sum
}

// mostRecent returns up to n transactions ordered by date descending using a
// stable insertion sort, so same-day entries keep their input order.
func mostRecent(txns []domain.Transaction, n int) []domain.Transaction {
	out := make([]domain.Transaction, len(txns))
	copy(out, txns)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Date.After(out[j-1].Date); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}
