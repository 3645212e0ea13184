package core

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventKind names a ledger mutation.
type EventKind string

const (
	EventTransactionAdded     EventKind = "transaction.added"
	EventTransactionDeleted   EventKind = "transaction.deleted"
	EventSavingsDeposited     EventKind = "savings.deposited"
	EventSavingsWithdrawn     EventKind = "savings.withdrawn"
	EventSavingsGoalChanged   EventKind = "savings.goal_changed"
	EventBillChanged          EventKind = "bill.changed"
	EventBillDeleted          EventKind = "bill.deleted"
	EventBillPaid             EventKind = "bill.paid"
	EventBudgetChanged        EventKind = "budget.changed"
	EventBudgetDeleted        EventKind = "budget.deleted"
	EventTuitionFeeChanged    EventKind = "tuition_fee.changed"
	EventTuitionFeeDeleted    EventKind = "tuition_fee.deleted"
	EventTuitionPaid          EventKind = "tuition.paid"
	EventScholarshipChanged   EventKind = "scholarship.changed"
	EventScholarshipDeleted   EventKind = "scholarship.deleted"
	EventLoanChanged          EventKind = "loan.changed"
	EventLoanDeleted          EventKind = "loan.deleted"
	EventLoanPaid             EventKind = "loan.paid"
	EventReminder             EventKind = "reminder"
)

// Event is a lightweight notification about a ledger change. Consumers read
// the full state from the ledger or its store; the event carries only
// identifiers, the amount moved and the ledger version it produced.
type Event struct {
	Kind      EventKind       `json:"kind"`
	EntityID  uuid.UUID       `json:"entityId,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Version   uint64          `json:"version"`
	Message   string          `json:"message,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes an event from JSON bytes
func EventFromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}
