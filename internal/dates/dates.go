// Package dates resolves relative reporting windows and answers the
// overdue/upcoming questions the ledger views ask. Every function takes the
// current time explicitly so results are deterministic under a fixed clock.
package dates

import (
	"fmt"
	"math"
	"time"
)

// DefaultUpcomingDays is the look-ahead window for "upcoming" items.
const DefaultUpcomingDays = 7

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// RangeKind names a relative reporting window.
type RangeKind string

const (
	ThisMonth    RangeKind = "this-month"
	LastMonth    RangeKind = "last-month"
	LastThreeMos RangeKind = "last-3-months"
	ThisYear     RangeKind = "this-year"
	Custom       RangeKind = "custom"
)

// ParseRangeKind maps a string to a RangeKind, falling back to ThisMonth.
func ParseRangeKind(s string) RangeKind {
	switch k := RangeKind(s); k {
	case ThisMonth, LastMonth, LastThreeMos, ThisYear, Custom:
		return k
	}
	return ThisMonth
}

// Range is an inclusive time window.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, bounds included.
func (r Range) Contains(t time.Time) bool {
	return IsDateInRange(t, r.Start, r.End)
}

func (r Range) String() string {
	return fmt.Sprintf("%s..%s", r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly))
}

// GetDateRange resolves kind into a concrete window anchored at now.
// Custom windows use start and end; the end date is extended to the end of
// its day. Unknown kinds resolve like ThisMonth.
func GetDateRange(kind RangeKind, start, end *time.Time, now time.Time) Range {
	switch kind {
	case LastMonth:
		first := StartOfMonth(now).AddDate(0, -1, 0)
		return Range{Start: first, End: EndOfDay(StartOfMonth(now).AddDate(0, 0, -1))}
	case LastThreeMos:
		return Range{Start: StartOfMonth(now).AddDate(0, -3, 0), End: now}
	case ThisYear:
		return Range{Start: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), End: now}
	case Custom:
		if start != nil && end != nil {
			return Range{Start: StartOfDay(*start), End: EndOfDay(*end)}
		}
	}
	return Range{Start: StartOfMonth(now), End: now}
}

// IsDateInRange is an inclusive membership test.
func IsDateInRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// IsOverdue reports whether t is before the start of now's day. A zero time
// is never overdue.
func IsOverdue(t, now time.Time) bool {
	if t.IsZero() {
		return false
	}
	return t.Before(StartOfDay(now))
}

// IsUpcoming reports whether t lies within [now, now+days].
func IsUpcoming(t, now time.Time, days int) bool {
	if t.IsZero() {
		return false
	}
	return IsDateInRange(t, now, now.Add(time.Duration(days)*24*time.Hour))
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// SameMonth reports whether a and b share calendar month and year.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// AddMonths adds n calendar months. Day overflow rolls into the next month.
func AddMonths(t time.Time, n int) time.Time {
	return t.AddDate(0, n, 0)
}

// Format styles for FormatDate.
const (
	StyleShort  = "short"
	StyleMedium = "medium"
	StyleLong   = "long"
)

// FormatDate renders t for display. Zero times render as "N/A".
func FormatDate(t time.Time, style string) string {
	if t.IsZero() {
		return "N/A"
	}
	switch style {
	case StyleShort:
		return t.Format("Jan 2, 2006")
	case StyleLong:
		return t.Format("Monday, January 2, 2006")
	default:
		return t.Format("Mon, Jan 2, 2006")
	}
}

// RelativeTime describes t relative to now in whole days, rounding up.
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	days := int(math.Ceil(t.Sub(now).Hours() / 24))
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 0:
		return fmt.Sprintf("In %d days", days)
	default:
		return fmt.Sprintf("%d days ago", -days)
	}
}

// CurrentMonthLabel renders now as "March 2024".
func CurrentMonthLabel(now time.Time) string {
	return now.Format("January 2006")
}
