package services

import (
	"fmt"
	"strings"

	"github.com/finsight-app/finsight_backend/internal/core/domain"
	"github.com/finsight-app/finsight_backend/internal/utils/finmath"
)

const (
	topCategoryCount    = 5
	promptRecentTxns    = 5
	defaultMaxExchanges = 5
)

// buildChatPrompt renders the financial context, optional conversation
// excerpt and the user's question into one deterministic text block.
func buildChatPrompt(fc *domain.FinancialContext, history string, userMessage string, style string) string {
	var b strings.Builder

	b.WriteString("You are a helpful personal finance assistant. Answer using only the financial data below.\n\n")

	if fc != nil {
		b.WriteString("FINANCIAL SUMMARY\n")
		fmt.Fprintf(&b, "Total income: %s\n", finmath.FormatMoney(fc.TotalIncome))
		fmt.Fprintf(&b, "Total expenses: %s\n", finmath.FormatMoney(fc.TotalExpenses))
		fmt.Fprintf(&b, "Net income: %s\n", finmath.FormatMoney(fc.NetIncome))
		fmt.Fprintf(&b, "Savings rate: %.1f%%\n", fc.SavingsRate)

		if top := fc.TopCategories(topCategoryCount); len(top) > 0 {
			b.WriteString("\nTOP SPENDING CATEGORIES\n")
			for _, cat := range top {
				fmt.Fprintf(&b, "- %s: %s\n", cat.Category, finmath.FormatMoney(cat.Amount))
			}
		}

		if len(fc.RecentTransactions) > 0 {
			b.WriteString("\nRECENT TRANSACTIONS\n")
			count := len(fc.RecentTransactions)
			if count > promptRecentTxns {
				count = promptRecentTxns
			}
			for _, txn := range fc.RecentTransactions[:count] {
				fmt.Fprintf(&b, "- %s | %s | %s | %s (%s)\n",
					txn.Date.Format("2006-01-02"), txn.Description, txn.Category,
					finmath.FormatMoney(txn.Amount), txn.Type)
			}
		}

		if len(fc.BudgetPerformances) > 0 {
			b.WriteString("\nBUDGET UTILIZATION\n")
			for _, bp := range fc.BudgetPerformances {
				fmt.Fprintf(&b, "- %s: %s of %s spent (%.1f%%)\n",
					bp.Category, finmath.FormatMoney(bp.Spent), finmath.FormatMoney(bp.Budgeted), bp.PercentageUsed)
			}
		}
	}

	if history != "" {
		b.WriteString("\nPRIOR CONVERSATION\n")
		b.WriteString(history)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nUSER QUESTION\n%s\n", userMessage)

	switch style {
	case "detailed":
		b.WriteString("\nRespond with a thorough, well-structured answer.")
	default:
		b.WriteString("\nRespond concisely, in a few sentences.")
	}

	return b.String()
}

// renderHistory formats the tail of a conversation as alternating
// "User:"/"Assistant:" lines. maxExchanges bounds the number of
// user/assistant pairs replayed.
func renderHistory(conv *domain.ChatConversation, maxExchanges int) string {
	if conv == nil || len(conv.Messages) == 0 {
		return ""
	}
	if maxExchanges <= 0 {
		maxExchanges = defaultMaxExchanges
	}

	maxEntries := maxExchanges * 2
	messages := conv.Messages
	if len(messages) > maxEntries {
		messages = messages[len(messages)-maxEntries:]
	}

	var b strings.Builder
	for _, msg := range messages {
		if msg.IsError {
			continue
		}
		if msg.IsUser {
			fmt.Fprintf(&b, "User: %s\n", msg.Content)
		} else {
			fmt.Fprintf(&b, "Assistant: %s\n", msg.Content)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// buildReportPrompt asks the model for a JSON-only financial summary report.
func buildReportPrompt(fc *domain.FinancialContext) string {
	var b strings.Builder

	b.WriteString("You are a personal finance analyst. Produce a financial summary report from the data below.\n\n")
	b.WriteString(financialDataBlock(fc))
	b.WriteString(`
Respond with ONLY a JSON object, no markdown fences and no prose, matching:
{
  "summary": "two or three sentence narrative of the period",
  "highlights": [{"title": "...", "detail": "...", "kind": "positive|warning|neutral", "relatedCategory": "optional category name"}],
  "recommendations": ["actionable suggestion", "..."]
}
Limit highlights to 5 and recommendations to 5.`)

	return b.String()
}

// buildImportPrompt asks the model to extract transactions from raw
// statement text as strict JSON.
func buildImportPrompt(statementText, dateFormat, currency string) string {
	var b strings.Builder

	b.WriteString("You are a bank statement parser. Extract every transaction from the statement text below.\n\n")
	if dateFormat != "" {
		fmt.Fprintf(&b, "Dates in the statement use the format %s.\n", dateFormat)
	}
	fmt.Fprintf(&b, "Amounts are in %s.\n\n", currency)
	b.WriteString("STATEMENT TEXT\n")
	b.WriteString(statementText)
	b.WriteString(`

Respond with ONLY a JSON array, no markdown fences and no prose. Each element:
{
  "date": "YYYY-MM-DD",
  "description": "merchant or payee",
  "category": "one of: Food, Transport, Housing, Utilities, Entertainment, Shopping, Health, Income, Other",
  "amount": 12.34,
  "type": "income" or "expense",
  "confidence": 0.0 to 1.0
}
Amounts are positive numbers. Use "income" for credits and "expense" for debits.`)

	return b.String()
}

func financialDataBlock(fc *domain.FinancialContext) string {
	var b strings.Builder

	b.WriteString("FINANCIAL DATA\n")
	fmt.Fprintf(&b, "Total income: %s\n", finmath.FormatMoney(fc.TotalIncome))
	fmt.Fprintf(&b, "Total expenses: %s\n", finmath.FormatMoney(fc.TotalExpenses))
	fmt.Fprintf(&b, "Net income: %s\n", finmath.FormatMoney(fc.NetIncome))
	fmt.Fprintf(&b, "Savings rate: %.1f%%\n", fc.SavingsRate)
	for _, cat := range fc.CategoryBreakdown {
		fmt.Fprintf(&b, "Category %s: %s\n", cat.Category, finmath.FormatMoney(cat.Amount))
	}
	for _, bp := range fc.BudgetPerformances {
		fmt.Fprintf(&b, "Budget %s: %s of %s (%.1f%%)\n",
			bp.Category, finmath.FormatMoney(bp.Spent), finmath.FormatMoney(bp.Budgeted), bp.PercentageUsed)
	}
	return b.String()
}
