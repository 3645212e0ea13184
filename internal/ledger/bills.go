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

// BillInput describes a new recurring bill.
type BillInput struct {
	Name        string
	Amount      decimal.Decimal
	Category    string
	Frequency   core.Frequency
	NextDueDate time.Time
}

// BillUpdate carries the fields to change; nil fields are left alone.
type BillUpdate struct {
	Name        *string
	Amount      *decimal.Decimal
	Category    *string
	Frequency   *core.Frequency
	NextDueDate *time.Time
	IsPaid      *bool
}

func (u BillUpdate) apply(b *core.Bill) {
	if u.Name != nil {
		b.Name = strings.TrimSpace(*u.Name)
	}
	if u.Amount != nil {
		b.Amount = *u.Amount
	}
	if u.Category != nil {
		b.Category = strings.TrimSpace(*u.Category)
	}
	if u.Frequency != nil {
		b.Frequency = *u.Frequency
	}
	if u.NextDueDate != nil {
		b.NextDueDate = *u.NextDueDate
	}
	if u.IsPaid != nil {
		b.IsPaid = *u.IsPaid
	}
}

// AddBill records an unpaid bill.
func (l *Ledger) AddBill(ctx context.Context, in BillInput) (core.Bill, error) {
	var bill core.Bill
	err := l.mutate(ctx, "add_bill", func(now time.Time) (core.Event, error) {
		b := core.Bill{
			ID:             l.newID(),
			Name:           strings.TrimSpace(in.Name),
			Amount:         in.Amount,
			Category:       strings.TrimSpace(in.Category),
			Frequency:      in.Frequency,
			NextDueDate:    in.NextDueDate,
			PaymentHistory: []core.BillPayment{},
			CreatedAt:      now,
		}
		if err := b.Validate(); err != nil {
			return core.Event{}, err
		}
		l.state.Bills = append(l.state.Bills, b)
		bill = b
		return core.Event{Kind: core.EventBillChanged, EntityID: b.ID, Amount: b.Amount}, nil
	})
	return bill, err
}

// UpdateBill merges u into the bill. Its payment history is kept.
func (l *Ledger) UpdateBill(ctx context.Context, id uuid.UUID, u BillUpdate) (core.Bill, error) {
	var bill core.Bill
	err := l.mutate(ctx, "update_bill", func(time.Time) (core.Event, error) {
		i := indexByID(l.state.Bills, id, func(b core.Bill) uuid.UUID { return b.ID })
		if i < 0 {
			return core.Event{}, notFound("bill", id)
		}
		b := l.state.Bills[i]
		b.PaymentHistory = slices.Clone(b.PaymentHistory)
		u.apply(&b)
		if err := b.Validate(); err != nil {
			return core.Event{}, err
		}
		l.state.Bills[i] = b
		bill = b
		return core.Event{Kind: core.EventBillChanged, EntityID: b.ID, Amount: b.Amount}, nil
	})
	return bill, err
}

// DeleteBill removes the bill. A missing bill is a no-op.
func (l *Ledger) DeleteBill(ctx context.Context, id uuid.UUID) error {
	return l.mutate(ctx, "delete_bill", func(time.Time) (core.Event, error) {
		i := indexByID(l.state.Bills, id, func(b core.Bill) uuid.UUID { return b.ID })
		if i < 0 {
			return core.Event{}, nil
		}
		b := l.state.Bills[i]
		l.state.Bills = slices.Delete(l.state.Bills, i, i+1)
		return core.Event{Kind: core.EventBillDeleted, EntityID: b.ID, Amount: b.Amount}, nil
	})
}

// MarkBillAsPaid records a payment, charges it through the normal
// transaction path and moves the due date forward one period. IsPaid is
// cleared again so the bill is ready for its next cycle. A missing bill
// returns (nil, nil).
func (l *Ledger) MarkBillAsPaid(ctx context.Context, id uuid.UUID) (*core.Bill, error) {
	var paid *core.Bill
	err := l.mutate(ctx, "mark_bill_paid", func(now time.Time) (core.Event, error) {
		i := indexByID(l.state.Bills, id, func(b core.Bill) uuid.UUID { return b.ID })
		if i < 0 {
			return core.Event{}, nil
		}
		b := l.state.Bills[i]
		next, err := core.AdvanceDueDate(b.Frequency, b.NextDueDate)
		if err != nil {
			return core.Event{}, err
		}
		tx, err := l.buildTransaction(TransactionInput{
			Description: b.Name + " payment",
			Amount:      b.Amount,
			Type:        core.Expense,
			Category:    core.CategoryBills,
		}, now)
		if err != nil {
			return core.Event{}, err
		}

		b.PaymentHistory = append(slices.Clone(b.PaymentHistory), core.BillPayment{Date: now, Amount: b.Amount})
		b.NextDueDate = next
		b.IsPaid = false
		l.state.Bills[i] = b
		l.applyTransactionLocked(tx)

		out := b
		out.PaymentHistory = slices.Clone(b.PaymentHistory)
		paid = &out
		return core.Event{Kind: core.EventBillPaid, EntityID: b.ID, Amount: b.Amount}, nil
	})
	if err != nil && !core.IsWarning(err) {
		return nil, err
	}
	return paid, err
}
