package derive

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
	"finledger/internal/dates"
)

var weeksPerMonth = decimal.RequireFromString("4.33")

// UpcomingBills returns unpaid bills due within the next week, soonest first.
func UpcomingBills(bills []core.Bill, now time.Time) []core.Bill {
	out := []core.Bill{}
	for _, b := range bills {
		if !b.IsPaid && dates.IsUpcoming(b.NextDueDate, now, dates.DefaultUpcomingDays) {
			out = append(out, cloneBill(b))
		}
	}
	slices.SortFunc(out, func(a, b core.Bill) int { return a.NextDueDate.Compare(b.NextDueDate) })
	return out
}

// OverdueBills returns unpaid bills whose due date has passed.
func OverdueBills(bills []core.Bill, now time.Time) []core.Bill {
	out := []core.Bill{}
	for _, b := range bills {
		if !b.IsPaid && !b.NextDueDate.IsZero() && b.NextDueDate.Before(now) {
			out = append(out, cloneBill(b))
		}
	}
	return out
}

// TotalMonthlyBills normalizes every bill to a monthly cost.
func TotalMonthlyBills(bills []core.Bill) decimal.Decimal {
	total := decimal.Zero
	twelve := decimal.NewFromInt(12)
	for _, b := range bills {
		switch b.Frequency {
		case core.Monthly:
			total = total.Add(b.Amount)
		case core.Weekly:
			total = total.Add(b.Amount.Mul(weeksPerMonth))
		case core.Yearly:
			total = total.Add(b.Amount.Div(twelve))
		}
	}
	return total
}

func cloneBill(b core.Bill) core.Bill {
	b.PaymentHistory = slices.Clone(b.PaymentHistory)
	return b
}
