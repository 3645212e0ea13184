// This file implements the Strategy Pattern for advancing recurring due dates.
// Each bill frequency has its own advancer; new frequencies can be registered.

package core

import (
	"fmt"
	"time"
)

// PeriodAdvancer moves a due date forward by exactly one period.
type PeriodAdvancer interface {
	Next(due time.Time) time.Time
}

// WeeklyAdvancer adds seven days.
type WeeklyAdvancer struct{}

func (WeeklyAdvancer) Next(due time.Time) time.Time { return due.AddDate(0, 0, 7) }

// MonthlyAdvancer adds one calendar month. Overflowing days roll into the
// following month (Jan 31 becomes Mar 2 or 3).
type MonthlyAdvancer struct{}

func (MonthlyAdvancer) Next(due time.Time) time.Time { return due.AddDate(0, 1, 0) }

// YearlyAdvancer adds one calendar year.
type YearlyAdvancer struct{}

func (YearlyAdvancer) Next(due time.Time) time.Time { return due.AddDate(1, 0, 0) }

var advancers = map[Frequency]PeriodAdvancer{
	Weekly:  WeeklyAdvancer{},
	Monthly: MonthlyAdvancer{},
	Yearly:  YearlyAdvancer{},
}

// GetAdvancer returns the advancer for a bill frequency.
func GetAdvancer(f Frequency) (PeriodAdvancer, error) {
	a, ok := advancers[f]
	if !ok {
		return nil, fmt.Errorf("%w: unknown frequency %q", ErrInvalidInput, f)
	}
	return a, nil
}

// RegisterAdvancer adds or replaces the advancer for a frequency.
func RegisterAdvancer(f Frequency, a PeriodAdvancer) {
	advancers[f] = a
}

// AdvanceDueDate returns due moved forward by one period of f.
func AdvanceDueDate(f Frequency, due time.Time) (time.Time, error) {
	a, err := GetAdvancer(f)
	if err != nil {
		return due, err
	}
	return a.Next(due), nil
}
