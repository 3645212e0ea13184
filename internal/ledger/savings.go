package ledger

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
)

// AddToSavings moves amount from the balance into savings. The mirrored
// expense entry is written straight to the log so the balance moves once.
func (l *Ledger) AddToSavings(ctx context.Context, amount decimal.Decimal) (core.Savings, error) {
	var out core.Savings
	err := l.mutate(ctx, "add_to_savings", func(now time.Time) (core.Event, error) {
		if !amount.IsPositive() {
			return core.Event{}, core.Invalid("savings amount must be greater than 0")
		}
		if amount.GreaterThan(l.state.Balance) {
			return core.Event{}, insufficient("deposit", amount, l.state.Balance)
		}
		l.state.Savings.TotalSaved = l.state.Savings.TotalSaved.Add(amount)
		l.state.Balance = l.state.Balance.Sub(amount)
		tx := core.Transaction{
			ID:          l.newID(),
			Description: core.DescSavingsDeposit,
			Amount:      amount,
			Type:        core.Expense,
			Category:    core.CategorySavings,
			Date:        now,
		}
		l.prependLocked(tx)
		out = l.savingsCopyLocked()
		return core.Event{Kind: core.EventSavingsDeposited, EntityID: tx.ID, Amount: amount}, nil
	})
	return out, err
}

// WithdrawFromSavings moves amount from savings back into the balance, with a
// mirrored income entry that bypasses the balance rule.
func (l *Ledger) WithdrawFromSavings(ctx context.Context, amount decimal.Decimal) (core.Savings, error) {
	var out core.Savings
	err := l.mutate(ctx, "withdraw_from_savings", func(now time.Time) (core.Event, error) {
		if !amount.IsPositive() {
			return core.Event{}, core.Invalid("withdrawal amount must be greater than 0")
		}
		if amount.GreaterThan(l.state.Savings.TotalSaved) {
			return core.Event{}, insufficient("withdrawal", amount, l.state.Savings.TotalSaved)
		}
		l.state.Savings.TotalSaved = l.state.Savings.TotalSaved.Sub(amount)
		l.state.Balance = l.state.Balance.Add(amount)
		tx := core.Transaction{
			ID:          l.newID(),
			Description: core.DescSavingsWithdrawal,
			Amount:      amount,
			Type:        core.Income,
			Category:    core.CategorySavingsWithdrawal,
			Date:        now,
		}
		l.prependLocked(tx)
		out = l.savingsCopyLocked()
		return core.Event{Kind: core.EventSavingsWithdrawn, EntityID: tx.ID, Amount: amount}, nil
	})
	return out, err
}

// SetSavingsGoal sets the overall savings target.
func (l *Ledger) SetSavingsGoal(ctx context.Context, goal decimal.Decimal) error {
	return l.mutate(ctx, "set_savings_goal", func(time.Time) (core.Event, error) {
		if goal.IsNegative() {
			return core.Event{}, core.Invalid("savings goal cannot be negative")
		}
		l.state.Savings.SavingsGoal = goal
		return core.Event{Kind: core.EventSavingsGoalChanged, Amount: goal}, nil
	})
}

type SavingsGoalInput struct {
	Name   string
	Target decimal.Decimal
}

// AddSavingsGoal appends a named goal with nothing saved yet.
func (l *Ledger) AddSavingsGoal(ctx context.Context, in SavingsGoalInput) (core.SavingsGoal, error) {
	var goal core.SavingsGoal
	err := l.mutate(ctx, "add_savings_goal", func(now time.Time) (core.Event, error) {
		if !in.Target.IsPositive() {
			return core.Event{}, core.Invalid("goal target must be greater than 0")
		}
		goal = core.SavingsGoal{
			ID:        l.newID(),
			Name:      strings.TrimSpace(in.Name),
			Target:    in.Target,
			Saved:     decimal.Zero,
			CreatedAt: now,
		}
		l.state.Savings.Goals = append(l.state.Savings.Goals, goal)
		return core.Event{Kind: core.EventSavingsGoalChanged, EntityID: goal.ID, Amount: goal.Target}, nil
	})
	return goal, err
}

func (l *Ledger) savingsCopyLocked() core.Savings {
	s := l.state.Savings
	s.Goals = slices.Clone(s.Goals)
	return s
}
