package derive

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
	"finledger/internal/dates"
)

type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

func TotalIncome(txs []core.Transaction) decimal.Decimal {
	return sumByType(txs, core.Income)
}

func TotalExpenses(txs []core.Transaction) decimal.Decimal {
	return sumByType(txs, core.Expense)
}

func sumByType(txs []core.Transaction, typ core.TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Type == typ {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// SavingsProgress is TotalSaved as a percentage of the overall goal.
func SavingsProgress(s core.Savings) decimal.Decimal {
	return core.Percent(s.TotalSaved, s.SavingsGoal)
}

// CategorySpending totals this month's expenses per category, largest first.
func CategorySpending(txs []core.Transaction, now time.Time) []CategoryAmount {
	totals := map[string]decimal.Decimal{}
	for _, tx := range txs {
		if tx.Type != core.Expense || tx.Date.IsZero() || !dates.SameMonth(tx.Date, now) {
			continue
		}
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount)
	}

	out := make([]CategoryAmount, 0, len(totals))
	for category, amount := range totals {
		out = append(out, CategoryAmount{Category: category, Amount: amount})
	}
	slices.SortFunc(out, func(a, b CategoryAmount) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

// ExpensesByCategory totals every expense in txs per category.
func ExpensesByCategory(txs []core.Transaction) map[string]decimal.Decimal {
	out := map[string]decimal.Decimal{}
	for _, tx := range txs {
		if tx.Type == core.Expense {
			out[tx.Category] = out[tx.Category].Add(tx.Amount)
		}
	}
	return out
}
