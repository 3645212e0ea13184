package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGetDateRange(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
	customStart := day(2024, 1, 10)
	customEnd := day(2024, 1, 20)

	tests := []struct {
		name      string
		kind      RangeKind
		start     *time.Time
		end       *time.Time
		wantStart string
		wantEnd   string
	}{
		{"this month", ThisMonth, nil, nil, "2024-03-01", "2024-03-15"},
		{"last month in leap year", LastMonth, nil, nil, "2024-02-01", "2024-02-29"},
		{"last three months", LastThreeMos, nil, nil, "2023-12-01", "2024-03-15"},
		{"this year", ThisYear, nil, nil, "2024-01-01", "2024-03-15"},
		{"custom", Custom, &customStart, &customEnd, "2024-01-10", "2024-01-20"},
		{"custom without bounds falls back", Custom, nil, nil, "2024-03-01", "2024-03-15"},
		{"unknown kind falls back", RangeKind("fortnight"), nil, nil, "2024-03-01", "2024-03-15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := GetDateRange(tt.kind, tt.start, tt.end, now)
			assert.Equal(t, tt.wantStart, r.Start.Format(time.DateOnly))
			assert.Equal(t, tt.wantEnd, r.End.Format(time.DateOnly))
		})
	}
}

func TestLastMonthIncludesWholeFinalDay(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	r := GetDateRange(LastMonth, nil, nil, now)

	assert.True(t, r.Contains(time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(day(2024, 3, 1)))
	assert.False(t, r.Contains(time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC)))
}

func TestParseRangeKind(t *testing.T) {
	assert.Equal(t, LastMonth, ParseRangeKind("last-month"))
	assert.Equal(t, ThisMonth, ParseRangeKind(""))
	assert.Equal(t, ThisMonth, ParseRangeKind("bogus"))
}

func TestIsDateInRangeInclusive(t *testing.T) {
	start, end := day(2024, 1, 1), day(2024, 1, 31)
	assert.True(t, IsDateInRange(start, start, end))
	assert.True(t, IsDateInRange(end, start, end))
	assert.False(t, IsDateInRange(end.Add(time.Nanosecond), start, end))
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)

	assert.True(t, IsOverdue(day(2024, 3, 14), now))
	assert.False(t, IsOverdue(day(2024, 3, 15), now), "earlier today is not overdue")
	assert.False(t, IsOverdue(day(2024, 3, 16), now))
	assert.False(t, IsOverdue(time.Time{}, now))
}

func TestIsUpcoming(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	assert.True(t, IsUpcoming(now, now, DefaultUpcomingDays))
	assert.True(t, IsUpcoming(now.Add(7*24*time.Hour), now, DefaultUpcomingDays))
	assert.False(t, IsUpcoming(now.Add(7*24*time.Hour+time.Second), now, DefaultUpcomingDays))
	assert.False(t, IsUpcoming(now.Add(-time.Second), now, DefaultUpcomingDays))
	assert.True(t, IsUpcoming(now.Add(20*24*time.Hour), now, 30))
	assert.False(t, IsUpcoming(time.Time{}, now, DefaultUpcomingDays))
}

func TestFormatting(t *testing.T) {
	d := day(2024, 3, 5)
	now := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "Mar 5, 2024", FormatDate(d, StyleShort))
	assert.Equal(t, "Tue, Mar 5, 2024", FormatDate(d, StyleMedium))
	assert.Equal(t, "Tuesday, March 5, 2024", FormatDate(d, StyleLong))
	assert.Equal(t, "N/A", FormatDate(time.Time{}, StyleShort))
	assert.Equal(t, "March 2024", CurrentMonthLabel(now))

	assert.Equal(t, "Today", RelativeTime(now, now))
	assert.Equal(t, "Tomorrow", RelativeTime(now.AddDate(0, 0, 1), now))
	assert.Equal(t, "Yesterday", RelativeTime(now.AddDate(0, 0, -1), now))
	assert.Equal(t, "In 3 days", RelativeTime(now.AddDate(0, 0, 3), now))
	assert.Equal(t, "4 days ago", RelativeTime(now.AddDate(0, 0, -4), now))
}
