package ledger

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finledger/internal/core"
)

type BudgetInput struct {
	Category string
	Amount   decimal.Decimal
}

type BudgetUpdate struct {
	Category *string
	Amount   *decimal.Decimal
}

// AddBudget creates a monthly spending limit for a category. Several budgets
// may share a category.
func (l *Ledger) AddBudget(ctx context.Context, in BudgetInput) (core.Budget, error) {
	var budget core.Budget
	err := l.mutate(ctx, "add_budget", func(now time.Time) (core.Event, error) {
		b := core.Budget{
			ID:        l.newID(),
			Category:  strings.TrimSpace(in.Category),
			Amount:    in.Amount,
			CreatedAt: now,
		}
		if err := b.Validate(); err != nil {
			return core.Event{}, err
		}
		l.state.Budgets = append(l.state.Budgets, b)
		budget = b
		return core.Event{Kind: core.EventBudgetChanged, EntityID: b.ID, Amount: b.Amount}, nil
	})
	return budget, err
}

// UpdateBudget changes the category or limit of a budget.
func (l *Ledger) UpdateBudget(ctx context.Context, id uuid.UUID, u BudgetUpdate) (core.Budget, error) {
	var budget core.Budget
	err := l.mutate(ctx, "update_budget", func(time.Time) (core.Event, error) {
		i := indexByID(l.state.Budgets, id, func(b core.Budget) uuid.UUID { return b.ID })
		if i < 0 {
			return core.Event{}, notFound("budget", id)
		}
		b := l.state.Budgets[i]
		if u.Category != nil {
			b.Category = strings.TrimSpace(*u.Category)
		}
		if u.Amount != nil {
			b.Amount = *u.Amount
		}
		if err := b.Validate(); err != nil {
			return core.Event{}, err
		}
		l.state.Budgets[i] = b
		budget = b
		return core.Event{Kind: core.EventBudgetChanged, EntityID: b.ID, Amount: b.Amount}, nil
	})
	return budget, err
}

// DeleteBudget removes the budget. A missing budget is a no-op.
func (l *Ledger) DeleteBudget(ctx context.Context, id uuid.UUID) error {
	return l.mutate(ctx, "delete_budget", func(time.Time) (core.Event, error) {
		i := indexByID(l.state.Budgets, id, func(b core.Budget) uuid.UUID { return b.ID })
		if i < 0 {
			return core.Event{}, nil
		}
		b := l.state.Budgets[i]
		l.state.Budgets = slices.Delete(l.state.Budgets, i, i+1)
		return core.Event{Kind: core.EventBudgetDeleted, EntityID: b.ID, Amount: b.Amount}, nil
	})
}
