package ledger

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finledger/internal/core"
)

// TransactionInput describes a new transaction. Type defaults to expense and
// Date to the current time.
type TransactionInput struct {
	Description string
	Amount      decimal.Decimal
	Type        core.TransactionType
	Category    string
	Date        time.Time
}

func (l *Ledger) buildTransaction(in TransactionInput, now time.Time) (core.Transaction, error) {
	tx := core.Transaction{
		ID:          l.newID(),
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Type:        in.Type,
		Category:    strings.TrimSpace(in.Category),
		Date:        in.Date,
	}
	if tx.Type == "" {
		tx.Type = core.Expense
	}
	if tx.Date.IsZero() {
		tx.Date = now
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// AddTransaction records a transaction at the head of the log and moves the
// balance: up for income, down for expenses.
func (l *Ledger) AddTransaction(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	var tx core.Transaction
	err := l.mutate(ctx, "add_transaction", func(now time.Time) (core.Event, error) {
		var err error
		tx, err = l.buildTransaction(in, now)
		if err != nil {
			return core.Event{}, err
		}
		l.applyTransactionLocked(tx)
		return core.Event{Kind: core.EventTransactionAdded, EntityID: tx.ID, Amount: tx.Amount}, nil
	})
	if err != nil && !core.IsWarning(err) {
		return core.Transaction{}, err
	}
	return tx, err
}

// DeleteTransaction removes a transaction and reverses its balance effect.
// Unknown ids are ignored.
func (l *Ledger) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return l.mutate(ctx, "delete_transaction", func(time.Time) (core.Event, error) {
		i := indexByID(l.state.Transactions, id, func(t core.Transaction) uuid.UUID { return t.ID })
		if i < 0 {
			return core.Event{}, nil
		}
		tx := l.state.Transactions[i]
		l.state.Balance = l.state.Balance.Sub(tx.Signed())
		l.state.Transactions = slices.Delete(l.state.Transactions, i, i+1)
		return core.Event{Kind: core.EventTransactionDeleted, EntityID: tx.ID, Amount: tx.Amount}, nil
	})
}

// Transactions returns the log, most recent first.
func (l *Ledger) Transactions() []core.Transaction {
	return l.Snapshot().Transactions
}
