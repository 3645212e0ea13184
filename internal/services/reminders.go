// Package services provides business logic and orchestration services.
//
// This file implements the reminder scan. Each kind of dated obligation has
// its own collector; a scan runs every collector against one snapshot and
// publishes one event per reminder found.
package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finledger/internal/core"
	"finledger/internal/dates"
	"finledger/internal/derive"
	"finledger/internal/log"
)

// ReminderKind names what a reminder is about.
type ReminderKind string

const (
	BillOverdue         ReminderKind = "bill_overdue"
	BillUpcoming        ReminderKind = "bill_upcoming"
	TuitionOverdue      ReminderKind = "tuition_overdue"
	TuitionUpcoming     ReminderKind = "tuition_upcoming"
	LoanOverdue         ReminderKind = "loan_overdue"
	LoanUpcoming        ReminderKind = "loan_upcoming"
	ScholarshipDeadline ReminderKind = "scholarship_deadline"
)

// Reminder is one obligation that is overdue or due soon. Message is the
// human readable text, filled in by the scan.
type Reminder struct {
	Kind     ReminderKind    `json:"kind"`
	EntityID uuid.UUID       `json:"entityId"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Due      time.Time       `json:"due"`
	Message  string          `json:"message"`
}

// describe renders r as seen at now. Something that fell due earlier today
// is due today rather than late.
func (r Reminder) describe(now time.Time) string {
	due := dates.FormatDate(r.Due, dates.StyleShort)
	when := strings.ToLower(dates.RelativeTime(r.Due, now))
	amount := r.Amount.StringFixed(2)
	switch {
	case r.Kind == ScholarshipDeadline:
		return fmt.Sprintf("%s closes %s (%s)", r.Name, due, when)
	case r.overdue() && dates.IsOverdue(r.Due, now):
		return fmt.Sprintf("%s of %s was due %s (%s)", r.Name, amount, due, when)
	case r.overdue():
		return fmt.Sprintf("%s of %s is due today", r.Name, amount)
	default:
		return fmt.Sprintf("%s of %s is due %s (%s)", r.Name, amount, due, when)
	}
}

// SnapshotSource returns the current ledger state. Snapshot stores satisfy it.
type SnapshotSource interface {
	Load(ctx context.Context) (*core.Snapshot, error)
}

// Publisher sends reminder events.
type Publisher interface {
	Publish(ctx context.Context, ev core.Event) error
}

// collector finds reminders of one kind of obligation.
type collector func(snap *core.Snapshot, now time.Time, days int) []Reminder

var collectors = []collector{
	billReminders,
	tuitionReminders,
	loanReminders,
	scholarshipReminders,
}

// ReminderScanner looks for overdue and upcoming obligations.
type ReminderScanner struct {
	clock      dates.Clock
	publisher  Publisher
	logger     *log.Logger
	windowDays int
}

// NewReminderScanner creates a scanner. A nil publisher only logs; a window
// of zero or less falls back to the default upcoming window.
func NewReminderScanner(clock dates.Clock, publisher Publisher, logger *log.Logger, windowDays int) *ReminderScanner {
	if clock == nil {
		clock = dates.SystemClock{}
	}
	if logger == nil {
		logger = log.Nop()
	}
	if windowDays <= 0 {
		windowDays = dates.DefaultUpcomingDays
	}
	return &ReminderScanner{
		clock:      clock,
		publisher:  publisher,
		logger:     logger.WithComponent(log.ComponentReminder),
		windowDays: windowDays,
	}
}

// Scan returns every reminder in snap, overdue ones first, then by due date.
func (s *ReminderScanner) Scan(snap *core.Snapshot) []Reminder {
	if snap == nil {
		return nil
	}
	now := s.clock.Now()
	var out []Reminder
	for _, collect := range collectors {
		out = append(out, collect(snap, now, s.windowDays)...)
	}
	for i := range out {
		out[i].Message = out[i].describe(now)
	}
	slices.SortStableFunc(out, func(a, b Reminder) int {
		if ao, bo := a.overdue(), b.overdue(); ao != bo {
			if ao {
				return -1
			}
			return 1
		}
		return a.Due.Compare(b.Due)
	})
	return out
}

func (r Reminder) overdue() bool {
	switch r.Kind {
	case BillOverdue, TuitionOverdue, LoanOverdue:
		return true
	}
	return false
}

// Run loads the current snapshot, scans it and publishes one event per
// reminder. It returns how many reminders were published. A failed publish
// does not stop the remaining ones; the failures are joined into the error.
func (s *ReminderScanner) Run(ctx context.Context, src SnapshotSource) (int, error) {
	snap, err := src.Load(ctx)
	if err != nil {
		if errors.Is(err, core.ErrNoSnapshot) {
			s.logger.DebugContext(ctx, "No snapshot to scan yet")
			return 0, nil
		}
		return 0, fmt.Errorf("load snapshot: %w", err)
	}

	reminders := s.Scan(snap)
	s.logger.InfoContext(ctx, "Reminder scan finished",
		log.FieldOperation, log.OpScan,
		"reminders", len(reminders),
		"window_days", s.windowDays)

	if s.publisher == nil {
		for _, r := range reminders {
			s.logger.InfoContext(ctx, r.Message, "kind", r.Kind, log.FieldEntityID, r.EntityID.String())
		}
		return len(reminders), nil
	}

	var errs []error
	published := 0
	for _, r := range reminders {
		ev := core.Event{
			Kind:      core.EventReminder,
			EntityID:  r.EntityID,
			Amount:    r.Amount,
			Message:   r.Message,
			Timestamp: s.clock.Now(),
		}
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish reminder",
				log.FieldOperation, log.OpPublish,
				log.FieldEntityID, r.EntityID.String(),
				log.FieldError, err)
			errs = append(errs, err)
			continue
		}
		published++
	}
	return published, errors.Join(errs...)
}

func billReminders(snap *core.Snapshot, now time.Time, days int) []Reminder {
	var out []Reminder
	for _, b := range derive.OverdueBills(snap.Bills, now) {
		out = append(out, Reminder{Kind: BillOverdue, EntityID: b.ID, Name: b.Name, Amount: b.Amount, Due: b.NextDueDate})
	}
	for _, b := range snap.Bills {
		if !b.IsPaid && dates.IsUpcoming(b.NextDueDate, now, days) {
			out = append(out, Reminder{Kind: BillUpcoming, EntityID: b.ID, Name: b.Name, Amount: b.Amount, Due: b.NextDueDate})
		}
	}
	return out
}

func tuitionReminders(snap *core.Snapshot, now time.Time, days int) []Reminder {
	var out []Reminder
	fees := derive.CurrentSemesterFees(snap.TuitionFees, snap.TuitionPayments, now)
	for _, f := range derive.OverdueTuitionFees(fees) {
		out = append(out, Reminder{Kind: TuitionOverdue, EntityID: f.ID, Name: f.Name, Amount: f.Remaining, Due: f.DueDate})
	}
	for _, f := range fees {
		if f.Status != derive.FeePaid && f.Status != derive.FeeOverdue && dates.IsUpcoming(f.DueDate, now, days) {
			out = append(out, Reminder{Kind: TuitionUpcoming, EntityID: f.ID, Name: f.Name, Amount: f.Remaining, Due: f.DueDate})
		}
	}
	return out
}

func loanReminders(snap *core.Snapshot, now time.Time, days int) []Reminder {
	var out []Reminder
	for _, l := range derive.OverdueLoanPayments(snap.Loans, now) {
		out = append(out, Reminder{Kind: LoanOverdue, EntityID: l.ID, Name: l.Name, Amount: l.MonthlyPayment, Due: *l.NextPaymentDate})
	}
	for _, l := range snap.Loans {
		if l.Status == core.LoanActive && l.NextPaymentDate != nil && dates.IsUpcoming(*l.NextPaymentDate, now, days) {
			out = append(out, Reminder{Kind: LoanUpcoming, EntityID: l.ID, Name: l.Name, Amount: l.MonthlyPayment, Due: *l.NextPaymentDate})
		}
	}
	return out
}

func scholarshipReminders(snap *core.Snapshot, now time.Time, days int) []Reminder {
	var out []Reminder
	for _, sc := range snap.Scholarships {
		open := sc.Status == core.ScholarshipAvailable || sc.Status == core.ScholarshipApplied
		if open && dates.IsUpcoming(sc.Deadline, now, days) {
			out = append(out, Reminder{Kind: ScholarshipDeadline, EntityID: sc.ID, Name: sc.Name, Amount: sc.Amount, Due: sc.Deadline})
		}
	}
	return out
}
