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

type TuitionFeeInput struct {
	Name        string
	Type        string
	Amount      decimal.Decimal
	DueDate     time.Time
	Semester    string
	Description string
}

type TuitionFeeUpdate struct {
	Name        *string
	Type        *string
	Amount      *decimal.Decimal
	DueDate     *time.Time
	Semester    *string
	Description *string
}

type TuitionPaymentInput struct {
	Amount    decimal.Decimal
	Method    string
	Reference string
	Notes     string
}

// AddTuitionFee records a fee with nothing paid against it.
func (l *Ledger) AddTuitionFee(ctx context.Context, in TuitionFeeInput) (core.TuitionFee, error) {
	var fee core.TuitionFee
	err := l.mutate(ctx, "add_tuition_fee", func(now time.Time) (core.Event, error) {
		f := core.TuitionFee{
			ID:          l.newID(),
			Name:        strings.TrimSpace(in.Name),
			Type:        strings.TrimSpace(in.Type),
			Amount:      in.Amount,
			DueDate:     in.DueDate,
			Semester:    strings.TrimSpace(in.Semester),
			Description: strings.TrimSpace(in.Description),
			CreatedAt:   now,
		}
		if err := f.Validate(); err != nil {
			return core.Event{}, err
		}
		l.state.TuitionFees = append(l.state.TuitionFees, f)
		fee = f
		return core.Event{Kind: core.EventTuitionFeeChanged, EntityID: f.ID, Amount: f.Amount}, nil
	})
	return fee, err
}

// UpdateTuitionFee merges u into the fee. The amount may not drop below what
// has already been paid against it.
func (l *Ledger) UpdateTuitionFee(ctx context.Context, id uuid.UUID, u TuitionFeeUpdate) (core.TuitionFee, error) {
	var fee core.TuitionFee
	err := l.mutate(ctx, "update_tuition_fee", func(time.Time) (core.Event, error) {
		i := indexByID(l.state.TuitionFees, id, func(f core.TuitionFee) uuid.UUID { return f.ID })
		if i < 0 {
			return core.Event{}, notFound("tuition fee", id)
		}
		f := l.state.TuitionFees[i]
		if u.Name != nil {
			f.Name = strings.TrimSpace(*u.Name)
		}
		if u.Type != nil {
			f.Type = strings.TrimSpace(*u.Type)
		}
		if u.Amount != nil {
			f.Amount = *u.Amount
		}
		if u.DueDate != nil {
			f.DueDate = *u.DueDate
		}
		if u.Semester != nil {
			f.Semester = strings.TrimSpace(*u.Semester)
		}
		if u.Description != nil {
			f.Description = strings.TrimSpace(*u.Description)
		}
		if err := f.Validate(); err != nil {
			return core.Event{}, err
		}
		if paid := l.paidTowardsLocked(f.ID); f.Amount.LessThan(paid) {
			return core.Event{}, exceeds("paid amount", paid, f.Amount)
		}
		l.state.TuitionFees[i] = f
		fee = f
		return core.Event{Kind: core.EventTuitionFeeChanged, EntityID: f.ID, Amount: f.Amount}, nil
	})
	return fee, err
}

// DeleteTuitionFee removes the fee together with every payment made to it.
func (l *Ledger) DeleteTuitionFee(ctx context.Context, id uuid.UUID) error {
	return l.mutate(ctx, "delete_tuition_fee", func(time.Time) (core.Event, error) {
		i := indexByID(l.state.TuitionFees, id, func(f core.TuitionFee) uuid.UUID { return f.ID })
		if i < 0 {
			return core.Event{}, nil
		}
		f := l.state.TuitionFees[i]
		l.state.TuitionFees = slices.Delete(l.state.TuitionFees, i, i+1)
		l.state.TuitionPayments = slices.DeleteFunc(l.state.TuitionPayments, func(p core.TuitionPayment) bool {
			return p.FeeID == id
		})
		return core.Event{Kind: core.EventTuitionFeeDeleted, EntityID: f.ID, Amount: f.Amount}, nil
	})
}

// MakeTuitionPayment pays towards a fee. Payments may never take the fee past
// its amount nor exceed the available balance.
func (l *Ledger) MakeTuitionPayment(ctx context.Context, feeID uuid.UUID, in TuitionPaymentInput) (core.TuitionPayment, error) {
	var payment core.TuitionPayment
	err := l.mutate(ctx, "make_tuition_payment", func(now time.Time) (core.Event, error) {
		if !in.Amount.IsPositive() {
			return core.Event{}, core.Invalid("payment amount must be greater than 0")
		}
		i := indexByID(l.state.TuitionFees, feeID, func(f core.TuitionFee) uuid.UUID { return f.ID })
		if i < 0 {
			return core.Event{}, notFound("tuition fee", feeID)
		}
		fee := l.state.TuitionFees[i]

		paid := l.paidTowardsLocked(feeID)
		if paid.Add(in.Amount).GreaterThan(fee.Amount) {
			return core.Event{}, exceeds("payment", in.Amount, fee.Amount.Sub(paid))
		}
		if in.Amount.GreaterThan(l.state.Balance) {
			return core.Event{}, insufficient("payment", in.Amount, l.state.Balance)
		}
		tx, err := l.buildTransaction(TransactionInput{
			Description: fee.Name + " payment",
			Amount:      in.Amount,
			Type:        core.Expense,
			Category:    core.CategoryEducation,
		}, now)
		if err != nil {
			return core.Event{}, err
		}

		payment = core.TuitionPayment{
			ID:        l.newID(),
			FeeID:     feeID,
			Amount:    in.Amount,
			Method:    strings.TrimSpace(in.Method),
			Reference: strings.TrimSpace(in.Reference),
			Notes:     strings.TrimSpace(in.Notes),
			Date:      now,
		}
		l.state.TuitionPayments = append(l.state.TuitionPayments, payment)
		l.applyTransactionLocked(tx)
		return core.Event{Kind: core.EventTuitionPaid, EntityID: payment.ID, Amount: payment.Amount}, nil
	})
	if err != nil && !core.IsWarning(err) {
		return core.TuitionPayment{}, err
	}
	return payment, err
}

func (l *Ledger) paidTowardsLocked(feeID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, p := range l.state.TuitionPayments {
		if p.FeeID == feeID {
			total = total.Add(p.Amount)
		}
	}
	return total
}
