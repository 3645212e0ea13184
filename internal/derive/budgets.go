package derive

import (
	"time"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
	"finledger/internal/dates"
)

type BudgetState string

const (
	BudgetGood    BudgetState = "good"
	BudgetWarning BudgetState = "warning"
	BudgetOver    BudgetState = "over"
)

var (
	warningThreshold = decimal.NewFromInt(80)
	overThreshold    = decimal.NewFromInt(100)
)

type BudgetStatus struct {
	core.Budget
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage decimal.Decimal `json:"percentage"`
	Status     BudgetState     `json:"status"`
}

type BudgetSummary struct {
	TotalBudgeted  decimal.Decimal `json:"totalBudgeted"`
	TotalSpent     decimal.Decimal `json:"totalSpent"`
	TotalRemaining decimal.Decimal `json:"totalRemaining"`
	OverBudget     int             `json:"overBudget"`
	WarningBudgets int             `json:"warningBudgets"`
}

// StateFor classifies a spent percentage. Exactly 80% is still good.
func StateFor(percentage decimal.Decimal) BudgetState {
	switch {
	case percentage.GreaterThan(overThreshold):
		return BudgetOver
	case percentage.GreaterThan(warningThreshold):
		return BudgetWarning
	}
	return BudgetGood
}

// CurrentMonthBudgets measures each budget against the expenses booked in its
// category during now's calendar month.
func CurrentMonthBudgets(budgets []core.Budget, txs []core.Transaction, now time.Time) []BudgetStatus {
	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent := decimal.Zero
		for _, tx := range txs {
			if tx.Date.IsZero() || tx.Type != core.Expense || tx.Category != b.Category {
				continue
			}
			if dates.SameMonth(tx.Date, now) {
				spent = spent.Add(tx.Amount)
			}
		}
		pct := core.Percent(spent, b.Amount)
		out = append(out, BudgetStatus{
			Budget:     b,
			Spent:      spent,
			Remaining:  b.Amount.Sub(spent),
			Percentage: pct,
			Status:     StateFor(pct),
		})
	}
	return out
}

func BudgetSummaryOf(statuses []BudgetStatus) BudgetSummary {
	var s BudgetSummary
	for _, b := range statuses {
		s.TotalBudgeted = s.TotalBudgeted.Add(b.Amount)
		s.TotalSpent = s.TotalSpent.Add(b.Spent)
		switch b.Status {
		case BudgetOver:
			s.OverBudget++
		case BudgetWarning:
			s.WarningBudgets++
		}
	}
	s.TotalRemaining = s.TotalBudgeted.Sub(s.TotalSpent)
	return s
}
