// Package ledger owns the balance and every financial collection. All
// mutations go through *Ledger, which serializes them behind one lock,
// persists a snapshot after each successful change and notifies an optional
// publisher. Readers get deep copies.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finledger/internal/core"
	"finledger/internal/dates"
	"finledger/internal/log"
)

// Store loads and saves complete ledger snapshots.
type Store interface {
	Load(ctx context.Context) (*core.Snapshot, error)
	Save(ctx context.Context, snap *core.Snapshot) error
}

// Publisher receives an event after each applied mutation.
type Publisher interface {
	Publish(ctx context.Context, ev core.Event) error
}

// Ledger owns the financial state. Every mutation runs under one lock,
// then the new snapshot is saved and an event published.
type Ledger struct {
	mu      sync.RWMutex
	state   *core.Snapshot
	version uint64

	clock     dates.Clock
	store     Store
	publisher Publisher
	logger    *log.Logger
	newID     func() uuid.UUID
}

// Option configures a Ledger in New or Open.
type Option func(*Ledger)

// WithStore persists a snapshot after each mutation.
func WithStore(s Store) Option { return func(l *Ledger) { l.store = s } }

// WithClock sets the time source used to stamp records.
func WithClock(c dates.Clock) Option { return func(l *Ledger) { l.clock = c } }

// WithPublisher sends an event after each applied mutation.
func WithPublisher(p Publisher) Option { return func(l *Ledger) { l.publisher = p } }

// WithLogger tags ledger logs with the ledger component.
func WithLogger(lg *log.Logger) Option {
	return func(l *Ledger) { l.logger = lg.WithComponent(log.ComponentLedger) }
}

// WithIDGenerator replaces the default UUIDv7 generator.
func WithIDGenerator(gen func() uuid.UUID) Option { return func(l *Ledger) { l.newID = gen } }

// WithSnapshot seeds the ledger with existing state.
func WithSnapshot(s *core.Snapshot) Option {
	return func(l *Ledger) {
		l.state = s.Clone()
	}
}

// New builds an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		state:  &core.Snapshot{},
		clock:  dates.SystemClock{},
		logger: log.Nop(),
		newID:  func() uuid.UUID { return uuid.Must(uuid.NewV7()) },
	}
	for _, opt := range opts {
		opt(l)
	}
	l.state.Normalize()
	return l
}

// Open builds a ledger and loads its state from the configured store. A store
// with nothing saved yet yields an empty ledger.
func Open(ctx context.Context, opts ...Option) (*Ledger, error) {
	l := New(opts...)
	if l.store == nil {
		return l, nil
	}

	snap, err := l.store.Load(ctx)
	switch {
	case errors.Is(err, core.ErrNoSnapshot):
		l.logger.InfoContext(ctx, "No stored snapshot, starting empty", log.FieldOperation, log.OpLoad)
		return l, nil
	case err != nil:
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	snap.Normalize()
	l.state = snap
	l.logger.InfoContext(ctx, "Ledger loaded",
		log.FieldOperation, log.OpLoad,
		log.FieldBalance, snap.Balance.StringFixed(2),
		"transactions", len(snap.Transactions))
	return l, nil
}

// Snapshot returns a deep copy of the current state.
func (l *Ledger) Snapshot() *core.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Clone()
}

// Balance returns the current cash balance.
func (l *Ledger) Balance() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Balance
}

// Version increases by one with every applied mutation.
func (l *Ledger) Version() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}

// Now is the ledger's notion of the current time.
func (l *Ledger) Now() time.Time {
	return l.clock.Now()
}

// mutate runs fn under the write lock. fn validates before touching state and
// returns the event describing what changed; a zero event means nothing
// changed. Successful changes are persisted before the lock is released and
// published after.
func (l *Ledger) mutate(ctx context.Context, op string, fn func(now time.Time) (core.Event, error)) error {
	l.mu.Lock()
	now := l.clock.Now()
	ev, err := fn(now)
	if err != nil {
		l.mu.Unlock()
		l.logger.DebugContext(ctx, "Ledger mutation rejected", log.NewFields().WithOperation(op).WithError(err).ToSlice()...)
		return err
	}
	if ev.Kind == "" {
		l.mu.Unlock()
		return nil
	}

	l.version++
	ev.Version = l.version
	ev.Timestamp = now
	saveErr := l.persistLocked(ctx, op)
	balance := l.state.Balance
	l.mu.Unlock()

	fields := log.NewFields().
		WithOperation(op).
		WithAmount(ev.Amount)
	fields[log.FieldVersion] = ev.Version
	fields[log.FieldBalance] = balance.StringFixed(2)
	if ev.EntityID != uuid.Nil {
		fields[log.FieldEntityID] = ev.EntityID.String()
	}
	l.logger.InfoContext(ctx, "Ledger mutation applied", fields.ToSlice()...)

	l.publish(ctx, ev)
	return saveErr
}

func (l *Ledger) persistLocked(ctx context.Context, op string) error {
	if l.store == nil {
		return nil
	}
	if err := l.store.Save(ctx, l.state.Clone()); err != nil {
		l.logger.WarnContext(ctx, "Snapshot save failed, mutation kept in memory",
			log.FieldOperation, op,
			log.FieldErrorType, log.ErrorTypeDatabase,
			log.FieldError, err)
		return &core.PersistError{Op: op, Err: err}
	}
	return nil
}

func (l *Ledger) publish(ctx context.Context, ev core.Event) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.Publish(ctx, ev); err != nil {
		l.logger.WarnContext(ctx, "Event publish failed",
			log.FieldEventKind, string(ev.Kind),
			log.FieldErrorType, log.ErrorTypeNetwork,
			log.FieldError, err)
	}
}

// applyTransactionLocked prepends tx and moves the balance by its signed amount.
func (l *Ledger) applyTransactionLocked(tx core.Transaction) {
	l.prependLocked(tx)
	l.state.Balance = l.state.Balance.Add(tx.Signed())
}

// prependLocked records tx in the log without touching the balance.
func (l *Ledger) prependLocked(tx core.Transaction) {
	l.state.Transactions = slices.Insert(l.state.Transactions, 0, tx)
}

func indexByID[T any](items []T, id uuid.UUID, key func(T) uuid.UUID) int {
	return slices.IndexFunc(items, func(it T) bool { return key(it) == id })
}

func notFound(entity string, id uuid.UUID) error {
	return fmt.Errorf("%w: %s %s", core.ErrNotFound, entity, id)
}

func insufficient(what string, amount, available decimal.Decimal) error {
	return fmt.Errorf("%w: %s %s exceeds available %s",
		core.ErrInsufficientFunds, what, amount.StringFixed(2), available.StringFixed(2))
}

func exceeds(what string, amount, limit decimal.Decimal) error {
	return fmt.Errorf("%w: %s %s exceeds remaining %s",
		core.ErrExceedsLimit, what, amount.StringFixed(2), limit.StringFixed(2))
}
