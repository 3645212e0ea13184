package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finledger/internal/core"
	"finledger/internal/dates"
	"finledger/internal/report"
	"finledger/internal/sheets/memory"
	"finledger/internal/storage"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type failingExporter struct{}

func (failingExporter) Export(context.Context, report.Data) (string, error) {
	return "", errors.New("quota exceeded")
}

func seededStore(t *testing.T) *storage.MemoryStore {
	t.Helper()
	store := storage.NewMemoryStore()
	snap := &core.Snapshot{
		Balance: decimal.RequireFromString("900"),
		Transactions: []core.Transaction{
			{ID: uuid.New(), Description: "Groceries", Amount: decimal.RequireFromString("100"), Type: core.Expense, Category: "Food", Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
			{ID: uuid.New(), Description: "Salary", Amount: decimal.RequireFromString("1000"), Type: core.Income, Category: "Work", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
			{ID: uuid.New(), Description: "February rent", Amount: decimal.RequireFromString("500"), Type: core.Expense, Category: "Housing", Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
	require.NoError(t, store.Save(context.Background(), snap))
	return store
}

func TestExportWorker_HandleEvent(t *testing.T) {
	ctx := context.Background()
	exporter := memory.New()
	w := NewExportWorker(seededStore(t), exporter, dates.FixedClock{T: testNow}, nil)

	require.NoError(t, w.HandleEvent(ctx, core.Event{Kind: core.EventTransactionAdded, Version: 3}))

	exports := exporter.Exports()
	require.Len(t, exports, 1)
	assert.Len(t, exports[0].Transactions, 2, "only this month's transactions")
	assert.True(t, exports[0].Summary.NetAmount.Equal(decimal.RequireFromString("900")))
	assert.Equal(t, "2024-03-01..2024-03-15", exports[0].Range.String())

	t.Run("older or equal versions are skipped", func(t *testing.T) {
		require.NoError(t, w.HandleEvent(ctx, core.Event{Kind: core.EventBillPaid, Version: 3}))
		require.NoError(t, w.HandleEvent(ctx, core.Event{Kind: core.EventBillPaid, Version: 2}))
		assert.Len(t, exporter.Exports(), 1)
	})

	t.Run("newer version exports again", func(t *testing.T) {
		require.NoError(t, w.HandleEvent(ctx, core.Event{Kind: core.EventLoanPaid, Version: 4}))
		assert.Len(t, exporter.Exports(), 2)
		assert.Equal(t, 2, w.Exports())
	})

	t.Run("reminders do not export", func(t *testing.T) {
		require.NoError(t, w.HandleEvent(ctx, core.Event{Kind: core.EventReminder, Message: "Rent is due"}))
		assert.Len(t, exporter.Exports(), 2)
	})
}

func TestExportWorker_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("exporter error requeues and keeps version", func(t *testing.T) {
		w := NewExportWorker(seededStore(t), failingExporter{}, dates.FixedClock{T: testNow}, nil)
		err := w.HandleEvent(ctx, core.Event{Kind: core.EventTransactionAdded, Version: 1})
		assert.ErrorContains(t, err, "quota exceeded")
		assert.Zero(t, w.lastVersion)
		assert.Zero(t, w.Exports())
	})

	t.Run("empty store is not an error", func(t *testing.T) {
		exporter := memory.New()
		w := NewExportWorker(storage.NewMemoryStore(), exporter, dates.FixedClock{T: testNow}, nil)
		require.NoError(t, w.StartupExport(ctx))
		assert.Empty(t, exporter.Exports())
	})
}

func TestExportWorker_StartupExport(t *testing.T) {
	exporter := memory.New()
	w := NewExportWorker(seededStore(t), exporter, dates.FixedClock{T: testNow}, nil)

	require.NoError(t, w.StartupExport(context.Background()))

	summary, err := exporter.ReadSummary(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.TotalIncome.Equal(decimal.RequireFromString("1000")))
	assert.True(t, summary.TotalExpenses.Equal(decimal.RequireFromString("100")))
}
