package ledger

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finledger/internal/core"
	"finledger/internal/dates"
)

// LoanInput describes a new loan. An empty Status means active.
type LoanInput struct {
	Name              string
	Type              string
	Lender            string
	PrincipalAmount   decimal.Decimal
	InterestRate      decimal.Decimal
	TermMonths        int
	StartDate         time.Time
	GracePeriodMonths int
	Status            core.LoanStatus
	Notes             string
}

// LoanUpdate carries the fields to change; nil fields are left alone.
type LoanUpdate struct {
	Name               *string
	Type               *string
	Lender             *string
	PrincipalAmount    *decimal.Decimal
	OutstandingBalance *decimal.Decimal
	InterestRate       *decimal.Decimal
	TermMonths         *int
	StartDate          *time.Time
	GracePeriodMonths  *int
	Status             *core.LoanStatus
	Notes              *string
}

// LoanPaymentInput is one payment against a loan. An empty PaymentType is a
// regular payment.
type LoanPaymentInput struct {
	Amount      decimal.Decimal
	PaymentType core.LoanPaymentType
	Method      string
	Reference   string
	Notes       string
}

// schedule fills the fields derived from start, grace and term.
func schedule(loan *core.Loan) {
	graceEnd := dates.AddMonths(loan.StartDate, loan.GracePeriodMonths)
	loan.EstimatedPayoffDate = dates.AddMonths(graceEnd, loan.TermMonths)
	if loan.Status == core.LoanActive {
		loan.NextPaymentDate = core.TimePtr(dates.AddMonths(graceEnd, 1))
	} else {
		loan.NextPaymentDate = nil
	}
}

// AddLoan records a loan with its outstanding balance at the full principal
// and derives the level payment and schedule.
func (l *Ledger) AddLoan(ctx context.Context, in LoanInput) (core.Loan, error) {
	var out core.Loan
	err := l.mutate(ctx, "add_loan", func(now time.Time) (core.Event, error) {
		loan := core.Loan{
			ID:                 l.newID(),
			Name:               strings.TrimSpace(in.Name),
			Type:               strings.TrimSpace(in.Type),
			Lender:             strings.TrimSpace(in.Lender),
			PrincipalAmount:    in.PrincipalAmount,
			OutstandingBalance: in.PrincipalAmount,
			InterestRate:       in.InterestRate,
			TermMonths:         in.TermMonths,
			StartDate:          in.StartDate,
			GracePeriodMonths:  in.GracePeriodMonths,
			Status:             in.Status,
			Notes:              strings.TrimSpace(in.Notes),
			CreatedAt:          now,
		}
		if loan.Status == "" {
			loan.Status = core.LoanActive
		}
		if err := loan.Validate(); err != nil {
			return core.Event{}, err
		}
		loan.MonthlyPayment = core.MonthlyPayment(loan.PrincipalAmount, loan.InterestRate, loan.TermMonths)
		schedule(&loan)

		l.state.Loans = append(l.state.Loans, loan)
		out = loan
		return core.Event{Kind: core.EventLoanChanged, EntityID: loan.ID, Amount: loan.PrincipalAmount}, nil
	})
	return out, err
}

// UpdateLoan merges u into the loan and recomputes the level payment and the
// payoff date. The outstanding balance always stays within [0, principal]; a
// loan left with nothing outstanding is marked paid.
func (l *Ledger) UpdateLoan(ctx context.Context, id uuid.UUID, u LoanUpdate) (core.Loan, error) {
	var out core.Loan
	err := l.mutate(ctx, "update_loan", func(time.Time) (core.Event, error) {
		i := indexByID(l.state.Loans, id, func(ln core.Loan) uuid.UUID { return ln.ID })
		if i < 0 {
			return core.Event{}, notFound("loan", id)
		}
		loan := l.state.Loans[i]
		prev := loan

		trim := func(dst *string, src *string) {
			if src != nil {
				*dst = strings.TrimSpace(*src)
			}
		}
		trim(&loan.Name, u.Name)
		trim(&loan.Type, u.Type)
		trim(&loan.Lender, u.Lender)
		trim(&loan.Notes, u.Notes)
		if u.PrincipalAmount != nil {
			loan.PrincipalAmount = *u.PrincipalAmount
		}
		if u.OutstandingBalance != nil {
			if u.OutstandingBalance.IsNegative() {
				return core.Event{}, core.Invalid("outstanding balance cannot be negative")
			}
			loan.OutstandingBalance = *u.OutstandingBalance
		}
		if u.InterestRate != nil {
			loan.InterestRate = *u.InterestRate
		}
		if u.TermMonths != nil {
			loan.TermMonths = *u.TermMonths
		}
		if u.StartDate != nil {
			loan.StartDate = *u.StartDate
		}
		if u.GracePeriodMonths != nil {
			loan.GracePeriodMonths = *u.GracePeriodMonths
		}
		if u.Status != nil {
			loan.Status = *u.Status
		}
		if err := loan.Validate(); err != nil {
			return core.Event{}, err
		}

		loan.OutstandingBalance = decimal.Min(decimal.Max(loan.OutstandingBalance, decimal.Zero), loan.PrincipalAmount)
		loan.MonthlyPayment = core.MonthlyPayment(loan.PrincipalAmount, loan.InterestRate, loan.TermMonths)
		if loan.OutstandingBalance.LessThanOrEqual(core.Epsilon) {
			loan.OutstandingBalance = decimal.Zero
			loan.Status = core.LoanPaid
		}

		rescheduled := !loan.StartDate.Equal(prev.StartDate) ||
			loan.GracePeriodMonths != prev.GracePeriodMonths ||
			loan.TermMonths != prev.TermMonths
		switch {
		case loan.Status == core.LoanPaid:
			loan.NextPaymentDate = nil
			if rescheduled {
				schedule(&loan)
			}
		case rescheduled || prev.Status != core.LoanActive || loan.NextPaymentDate == nil:
			schedule(&loan)
		}

		l.state.Loans[i] = loan
		out = loan
		return core.Event{Kind: core.EventLoanChanged, EntityID: loan.ID, Amount: loan.OutstandingBalance}, nil
	})
	return out, err
}

// DeleteLoan removes the loan and its payment records.
func (l *Ledger) DeleteLoan(ctx context.Context, id uuid.UUID) error {
	return l.mutate(ctx, "delete_loan", func(time.Time) (core.Event, error) {
		i := indexByID(l.state.Loans, id, func(ln core.Loan) uuid.UUID { return ln.ID })
		if i < 0 {
			return core.Event{}, nil
		}
		loan := l.state.Loans[i]
		l.state.Loans = slices.Delete(l.state.Loans, i, i+1)
		l.state.LoanPayments = slices.DeleteFunc(l.state.LoanPayments, func(p core.LoanPayment) bool {
			return p.LoanID == id
		})
		return core.Event{Kind: core.EventLoanDeleted, EntityID: loan.ID, Amount: loan.OutstandingBalance}, nil
	})
}

// MakeLoanPayment charges a payment against the balance and splits it into
// interest and principal. A loan whose outstanding balance drops to within
// core.Epsilon is marked paid.
func (l *Ledger) MakeLoanPayment(ctx context.Context, loanID uuid.UUID, in LoanPaymentInput) (core.LoanPayment, error) {
	var payment core.LoanPayment
	err := l.mutate(ctx, "make_loan_payment", func(now time.Time) (core.Event, error) {
		i := indexByID(l.state.Loans, loanID, func(ln core.Loan) uuid.UUID { return ln.ID })
		if i < 0 {
			return core.Event{}, notFound("loan", loanID)
		}
		loan := l.state.Loans[i]

		kind := in.PaymentType
		if kind == "" {
			kind = core.PaymentRegular
		}
		if !in.Amount.IsPositive() {
			return core.Event{}, core.Invalid("payment amount must be greater than 0")
		}
		if !kind.Valid() {
			return core.Event{}, core.Invalid(fmt.Sprintf("unknown payment type %q", kind))
		}
		if in.Amount.GreaterThan(l.state.Balance) {
			return core.Event{}, insufficient("payment", in.Amount, l.state.Balance)
		}
		if in.Amount.GreaterThan(loan.OutstandingBalance) {
			return core.Event{}, exceeds("payment", in.Amount, loan.OutstandingBalance)
		}
		tx, err := l.buildTransaction(TransactionInput{
			Description: loan.Name + " - Loan Payment",
			Amount:      in.Amount,
			Type:        core.Expense,
			Category:    core.CategoryLoanPayment,
		}, now)
		if err != nil {
			return core.Event{}, err
		}

		principal, interest := core.SplitPayment(in.Amount, loan.OutstandingBalance, loan.InterestRate, kind)
		loan.OutstandingBalance = loan.OutstandingBalance.Sub(principal)
		if loan.OutstandingBalance.LessThanOrEqual(core.Epsilon) {
			loan.OutstandingBalance = decimal.Zero
			loan.Status = core.LoanPaid
			loan.NextPaymentDate = nil
		} else {
			from := now
			if loan.NextPaymentDate != nil {
				from = *loan.NextPaymentDate
			}
			loan.NextPaymentDate = core.TimePtr(dates.AddMonths(from, 1))
		}

		payment = core.LoanPayment{
			ID:              l.newID(),
			LoanID:          loanID,
			Amount:          in.Amount,
			PrincipalAmount: principal,
			InterestAmount:  interest,
			PaymentType:     kind,
			Method:          strings.TrimSpace(in.Method),
			Reference:       strings.TrimSpace(in.Reference),
			Notes:           strings.TrimSpace(in.Notes),
			Date:            now,
		}
		l.state.Loans[i] = loan
		l.state.LoanPayments = append(l.state.LoanPayments, payment)
		l.applyTransactionLocked(tx)

		ev := core.Event{Kind: core.EventLoanPaid, EntityID: payment.ID, Amount: payment.Amount}
		if loan.Status == core.LoanPaid {
			ev.Message = "loan repaid"
		}
		return ev, nil
	})
	if err != nil && !core.IsWarning(err) {
		return core.LoanPayment{}, err
	}
	return payment, err
}
