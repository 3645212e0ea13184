package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finledger/internal/core"
	"finledger/internal/dates"
	"finledger/internal/storage"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func day(m time.Month, d int) time.Time { return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC) }

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type recordingPublisher struct {
	mu     sync.Mutex
	events []core.Event
	failOn uuid.UUID
}

func (p *recordingPublisher) Publish(_ context.Context, ev core.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ev.EntityID == p.failOn {
		return errors.New("broker unavailable")
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type fixture struct {
	snap         *core.Snapshot
	overdueBill  uuid.UUID
	upcomingBill uuid.UUID
	laterBill    uuid.UUID
	overdueFee   uuid.UUID
	partialFee   uuid.UUID
	activeLoan   uuid.UUID
	openGrant    uuid.UUID
}

func newFixture() fixture {
	f := fixture{
		overdueBill:  uuid.New(),
		upcomingBill: uuid.New(),
		laterBill:    uuid.New(),
		overdueFee:   uuid.New(),
		partialFee:   uuid.New(),
		activeLoan:   uuid.New(),
		openGrant:    uuid.New(),
	}
	f.snap = &core.Snapshot{
		Bills: []core.Bill{
			{ID: f.overdueBill, Name: "Rent", Amount: amt("50"), Frequency: core.Monthly, NextDueDate: day(3, 10)},
			{ID: f.upcomingBill, Name: "Phone", Amount: amt("20"), Frequency: core.Monthly, NextDueDate: day(3, 18)},
			{ID: uuid.New(), Name: "Gym", Amount: amt("30"), Frequency: core.Monthly, NextDueDate: day(3, 12), IsPaid: true},
			{ID: f.laterBill, Name: "Insurance", Amount: amt("400"), Frequency: core.Yearly, NextDueDate: day(4, 10)},
		},
		TuitionFees: []core.TuitionFee{
			{ID: f.overdueFee, Name: "Lab fee", Amount: amt("1000"), DueDate: day(3, 1)},
			{ID: f.partialFee, Name: "Tuition", Amount: amt("500"), DueDate: day(3, 20)},
		},
		TuitionPayments: []core.TuitionPayment{
			{ID: uuid.New(), FeeID: f.partialFee, Amount: amt("200"), Date: day(3, 2)},
		},
		Loans: []core.Loan{
			{ID: f.activeLoan, Name: "Car", Status: core.LoanActive, MonthlyPayment: amt("150"), NextPaymentDate: core.TimePtr(day(3, 16))},
			{ID: uuid.New(), Name: "Old", Status: core.LoanPaid, NextPaymentDate: core.TimePtr(day(3, 1))},
		},
		Scholarships: []core.Scholarship{
			{ID: f.openGrant, Name: "Merit", Amount: amt("2500"), Deadline: day(3, 19), Status: core.ScholarshipAvailable},
			{ID: uuid.New(), Name: "Rejected", Amount: amt("900"), Deadline: day(3, 19), Status: core.ScholarshipRejected},
		},
	}
	f.snap.Normalize()
	return f
}

func TestReminderScanner_Scan(t *testing.T) {
	f := newFixture()
	s := NewReminderScanner(dates.FixedClock{T: testNow}, nil, nil, 7)

	got := s.Scan(f.snap)

	type row struct {
		kind ReminderKind
		id   uuid.UUID
	}
	var rows []row
	for _, r := range got {
		rows = append(rows, row{r.Kind, r.EntityID})
	}
	assert.Equal(t, []row{
		{TuitionOverdue, f.overdueFee},
		{BillOverdue, f.overdueBill},
		{LoanUpcoming, f.activeLoan},
		{BillUpcoming, f.upcomingBill},
		{ScholarshipDeadline, f.openGrant},
		{TuitionUpcoming, f.partialFee},
	}, rows)

	// Upcoming tuition reminds about what is still owed.
	assert.True(t, got[5].Amount.Equal(amt("300")))
	assert.Equal(t, "Rent of 50.00 was due Mar 10, 2024 (5 days ago)", got[1].Message)
	assert.Equal(t, "Merit closes Mar 19, 2024 (in 4 days)", got[4].Message)
	assert.Equal(t, "Phone of 20.00 is due Mar 18, 2024 (in 3 days)", got[3].Message)
}

func TestReminderScanner_DueToday(t *testing.T) {
	snap := &core.Snapshot{Bills: []core.Bill{
		{ID: uuid.New(), Name: "Water", Amount: amt("35"), Frequency: core.Monthly, NextDueDate: day(3, 15)},
	}}
	snap.Normalize()

	got := NewReminderScanner(dates.FixedClock{T: testNow}, nil, nil, 7).Scan(snap)
	require.Len(t, got, 1, "a past instant is not upcoming")
	assert.Equal(t, BillOverdue, got[0].Kind)
	assert.Equal(t, "Water of 35.00 is due today", got[0].Message)
}

func TestReminderScanner_Window(t *testing.T) {
	f := newFixture()
	s := NewReminderScanner(dates.FixedClock{T: testNow}, nil, nil, 30)

	var ids []uuid.UUID
	for _, r := range s.Scan(f.snap) {
		ids = append(ids, r.EntityID)
	}
	assert.Contains(t, ids, f.laterBill)

	assert.Nil(t, s.Scan(nil))
	assert.Equal(t, dates.DefaultUpcomingDays, NewReminderScanner(nil, nil, nil, 0).windowDays)
}

func TestReminderScanner_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes one event per reminder", func(t *testing.T) {
		f := newFixture()
		store := storage.NewMemoryStore()
		require.NoError(t, store.Save(ctx, f.snap))
		pub := &recordingPublisher{}

		n, err := NewReminderScanner(dates.FixedClock{T: testNow}, pub, nil, 7).Run(ctx, store)
		require.NoError(t, err)
		assert.Equal(t, 6, n)
		require.Len(t, pub.events, 6)
		for _, ev := range pub.events {
			assert.Equal(t, core.EventReminder, ev.Kind)
			assert.NotEmpty(t, ev.Message)
			assert.Equal(t, testNow, ev.Timestamp)
		}
	})

	t.Run("failed publish does not stop the rest", func(t *testing.T) {
		f := newFixture()
		store := storage.NewMemoryStore()
		require.NoError(t, store.Save(ctx, f.snap))
		pub := &recordingPublisher{failOn: f.overdueBill}

		n, err := NewReminderScanner(dates.FixedClock{T: testNow}, pub, nil, 7).Run(ctx, store)
		assert.Error(t, err)
		assert.Equal(t, 5, n)
	})

	t.Run("nothing stored yet", func(t *testing.T) {
		n, err := NewReminderScanner(dates.FixedClock{T: testNow}, &recordingPublisher{}, nil, 7).Run(ctx, storage.NewMemoryStore())
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestReminderProcessor_Lifecycle(t *testing.T) {
	f := newFixture()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), f.snap))
	pub := &recordingPublisher{}
	scanner := NewReminderScanner(dates.FixedClock{T: testNow}, pub, nil, 7)

	p := NewReminderProcessor(scanner, store, ReminderProcessorConfig{Interval: time.Hour})
	assert.False(t, p.IsRunning())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, p.Start(ctx))
	assert.True(t, p.IsRunning())
	assert.Error(t, p.Start(ctx))

	// The first scan runs on startup.
	assert.Eventually(t, func() bool { return pub.count() == 6 }, time.Second, 10*time.Millisecond)

	require.NoError(t, p.Stop(context.Background()))
	assert.False(t, p.IsRunning())
	assert.NoError(t, p.Stop(context.Background()))
}

func TestReminderProcessor_NotInitialized(t *testing.T) {
	p := NewReminderProcessor(nil, nil, ReminderProcessorConfig{})
	assert.Equal(t, time.Hour, p.config.Interval)
	assert.Error(t, p.Start(context.Background()))
	assert.False(t, p.IsRunning())
}
