package derive

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finledger/internal/core"
	"finledger/internal/dates"
)

type FeeState string

const (
	FeePaid    FeeState = "paid"
	FeePartial FeeState = "partial"
	FeeOverdue FeeState = "overdue"
	FeePending FeeState = "pending"
)

type FeeStatus struct {
	core.TuitionFee
	AmountPaid decimal.Decimal `json:"amountPaid"`
	Remaining  decimal.Decimal `json:"remaining"`
	Status     FeeState        `json:"status"`
}

type TuitionSummary struct {
	TotalFees      decimal.Decimal `json:"totalFees"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	TotalRemaining decimal.Decimal `json:"totalRemaining"`
	OverdueFees    int             `json:"overdueFees"`
}

// PaymentRecord is a tuition payment joined with the name of its fee.
type PaymentRecord struct {
	core.TuitionPayment
	FeeName string `json:"feeName"`
}

const unknownFee = "Unknown Fee"

// CurrentSemesterFees returns fees due this calendar year or later with their
// payment progress, earliest due date first. Fees without a due date are kept.
func CurrentSemesterFees(fees []core.TuitionFee, payments []core.TuitionPayment, now time.Time) []FeeStatus {
	paid := make(map[uuid.UUID]decimal.Decimal, len(fees))
	for _, p := range payments {
		paid[p.FeeID] = paid[p.FeeID].Add(p.Amount)
	}

	out := []FeeStatus{}
	for _, f := range fees {
		if !f.DueDate.IsZero() && f.DueDate.Year() < now.Year() {
			continue
		}
		amountPaid := paid[f.ID]
		fs := FeeStatus{
			TuitionFee: f,
			AmountPaid: amountPaid,
			Remaining:  f.Amount.Sub(amountPaid),
		}
		switch {
		case amountPaid.GreaterThanOrEqual(f.Amount):
			fs.Status = FeePaid
		case amountPaid.IsPositive():
			fs.Status = FeePartial
		case !f.DueDate.IsZero() && f.DueDate.Before(now):
			fs.Status = FeeOverdue
		default:
			fs.Status = FeePending
		}
		out = append(out, fs)
	}
	slices.SortStableFunc(out, func(a, b FeeStatus) int { return a.DueDate.Compare(b.DueDate) })
	return out
}

func TuitionSummaryOf(fees []FeeStatus) TuitionSummary {
	var s TuitionSummary
	for _, f := range fees {
		s.TotalFees = s.TotalFees.Add(f.Amount)
		s.TotalPaid = s.TotalPaid.Add(f.AmountPaid)
		if f.Status == FeeOverdue {
			s.OverdueFees++
		}
	}
	s.TotalRemaining = s.TotalFees.Sub(s.TotalPaid)
	return s
}

// UpcomingTuitionDeadlines returns unpaid fees due within the next week.
func UpcomingTuitionDeadlines(fees []FeeStatus, now time.Time) []FeeStatus {
	out := []FeeStatus{}
	for _, f := range fees {
		if f.Status != FeePaid && dates.IsUpcoming(f.DueDate, now, dates.DefaultUpcomingDays) {
			out = append(out, f)
		}
	}
	return out
}

func OverdueTuitionFees(fees []FeeStatus) []FeeStatus {
	out := []FeeStatus{}
	for _, f := range fees {
		if f.Status == FeeOverdue {
			out = append(out, f)
		}
	}
	return out
}

// TuitionPaymentHistory lists every payment, newest first.
func TuitionPaymentHistory(fees []core.TuitionFee, payments []core.TuitionPayment) []PaymentRecord {
	names := make(map[uuid.UUID]string, len(fees))
	for _, f := range fees {
		names[f.ID] = f.Name
	}
	out := make([]PaymentRecord, 0, len(payments))
	for _, p := range payments {
		name, ok := names[p.FeeID]
		if !ok {
			name = unknownFee
		}
		out = append(out, PaymentRecord{TuitionPayment: p, FeeName: name})
	}
	slices.SortStableFunc(out, func(a, b PaymentRecord) int { return b.Date.Compare(a.Date) })
	return out
}
