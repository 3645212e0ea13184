package derive

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
	"finledger/internal/dates"
)

type ScholarshipSummary struct {
	TotalAvailable    decimal.Decimal                            `json:"totalAvailable"`
	TotalReceived     decimal.Decimal                            `json:"totalReceived"`
	AppliedCount      int                                        `json:"appliedCount"`
	UpcomingDeadlines int                                        `json:"upcomingDeadlines"`
	ByStatus          map[core.ScholarshipStatus]decimal.Decimal `json:"byStatus"`
}

func isOpen(s core.Scholarship) bool {
	return s.Status == core.ScholarshipAvailable || s.Status == core.ScholarshipApplied
}

func ScholarshipSummaryOf(items []core.Scholarship, now time.Time) ScholarshipSummary {
	s := ScholarshipSummary{ByStatus: map[core.ScholarshipStatus]decimal.Decimal{}}
	for _, it := range items {
		s.ByStatus[it.Status] = s.ByStatus[it.Status].Add(it.Amount)
		switch it.Status {
		case core.ScholarshipAvailable:
			s.TotalAvailable = s.TotalAvailable.Add(it.Amount)
		case core.ScholarshipReceived:
			s.TotalReceived = s.TotalReceived.Add(it.Amount)
		case core.ScholarshipApplied:
			s.AppliedCount++
		}
		if isOpen(it) && dates.IsUpcoming(it.Deadline, now, dates.DefaultUpcomingDays) {
			s.UpcomingDeadlines++
		}
	}
	return s
}

// UpcomingScholarshipDeadlines returns available or applied scholarships
// closing within the next week, soonest first.
func UpcomingScholarshipDeadlines(items []core.Scholarship, now time.Time) []core.Scholarship {
	out := []core.Scholarship{}
	for _, it := range items {
		if isOpen(it) && dates.IsUpcoming(it.Deadline, now, dates.DefaultUpcomingDays) {
			out = append(out, it)
		}
	}
	slices.SortFunc(out, func(a, b core.Scholarship) int { return a.Deadline.Compare(b.Deadline) })
	return out
}
