package derive

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
	"finledger/internal/dates"
)

// maxScheduleRows bounds schedules for loans whose payment barely covers
// interest.
const maxScheduleRows = 1200

type LoanSummary struct {
	TotalBorrowed    decimal.Decimal `json:"totalBorrowed"`
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
	TotalInterest    decimal.Decimal `json:"totalInterest"`
}

type ScheduleRow struct {
	Month     int             `json:"month"`
	Date      time.Time       `json:"date"`
	Payment   decimal.Decimal `json:"payment"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Balance   decimal.Decimal `json:"balance"`
}

func LoanSummaryOf(loans []core.Loan, payments []core.LoanPayment) LoanSummary {
	var s LoanSummary
	for _, l := range loans {
		s.TotalBorrowed = s.TotalBorrowed.Add(l.PrincipalAmount)
		s.TotalOutstanding = s.TotalOutstanding.Add(l.OutstandingBalance)
	}
	s.TotalPaid = s.TotalBorrowed.Sub(s.TotalOutstanding)
	for _, p := range payments {
		if p.PaymentType != core.PaymentPrincipal {
			s.TotalInterest = s.TotalInterest.Add(p.InterestAmount)
		}
	}
	return s
}

func dueLoans(loans []core.Loan, keep func(due time.Time) bool) []core.Loan {
	out := []core.Loan{}
	for _, l := range loans {
		if l.Status != core.LoanActive || l.NextPaymentDate == nil {
			continue
		}
		if keep(*l.NextPaymentDate) {
			l.NextPaymentDate = core.TimePtr(*l.NextPaymentDate)
			out = append(out, l)
		}
	}
	return out
}

// UpcomingLoanPayments returns active loans with a payment due within the
// next week, soonest first.
func UpcomingLoanPayments(loans []core.Loan, now time.Time) []core.Loan {
	out := dueLoans(loans, func(due time.Time) bool {
		return dates.IsUpcoming(due, now, dates.DefaultUpcomingDays)
	})
	slices.SortFunc(out, func(a, b core.Loan) int { return a.NextPaymentDate.Compare(*b.NextPaymentDate) })
	return out
}

func OverdueLoanPayments(loans []core.Loan, now time.Time) []core.Loan {
	return dueLoans(loans, func(due time.Time) bool { return due.Before(now) })
}

// AmortizationSchedule projects the remaining payments of an active loan at
// its level monthly payment. Amounts are rounded to cents and the final row
// pays off whatever is left. Paid loans, and loans whose payment never
// covers the interest, have no schedule.
func AmortizationSchedule(loan core.Loan) []ScheduleRow {
	balance := loan.OutstandingBalance
	if loan.Status != core.LoanActive || !balance.IsPositive() {
		return nil
	}
	payment := loan.MonthlyPayment
	if !payment.IsPositive() {
		payment = core.MonthlyPayment(loan.PrincipalAmount, loan.InterestRate, loan.TermMonths)
	}
	payment = payment.Round(2)
	rate := loan.MonthlyRate()
	if !payment.GreaterThan(balance.Mul(rate).Round(2)) {
		return nil
	}

	due := dates.AddMonths(dates.AddMonths(loan.StartDate, loan.GracePeriodMonths), 1)
	if loan.NextPaymentDate != nil {
		due = *loan.NextPaymentDate
	}

	rows := []ScheduleRow{}
	for month := 1; balance.IsPositive() && month <= maxScheduleRows; month++ {
		interest := balance.Mul(rate).Round(2)
		principal := payment.Sub(interest)
		amount := payment
		if principal.GreaterThanOrEqual(balance) || balance.Sub(principal).LessThanOrEqual(core.Epsilon) {
			principal = balance
			amount = principal.Add(interest)
		}
		balance = balance.Sub(principal)
		rows = append(rows, ScheduleRow{
			Month:     month,
			Date:      dates.AddMonths(due, month-1),
			Payment:   amount,
			Principal: principal,
			Interest:  interest,
			Balance:   balance,
		})
	}
	return rows
}
