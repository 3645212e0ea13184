// Package worker consumes ledger events outside the API process.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"finledger/internal/core"
	"finledger/internal/dates"
	"finledger/internal/log"
	"finledger/internal/report"
	"finledger/internal/sheets"
)

// SnapshotSource returns the latest saved ledger state.
type SnapshotSource interface {
	Load(ctx context.Context) (*core.Snapshot, error)
}

// ExportWorker keeps a spreadsheet copy of the current month's report in
// step with the ledger.
type ExportWorker struct {
	source   SnapshotSource
	exporter sheets.ReportExporter
	clock    dates.Clock
	logger   *log.Logger

	mu          sync.Mutex
	lastVersion uint64
	exports     int
}

func NewExportWorker(source SnapshotSource, exporter sheets.ReportExporter, clock dates.Clock, logger *log.Logger) *ExportWorker {
	if clock == nil {
		clock = dates.SystemClock{}
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &ExportWorker{
		source:   source,
		exporter: exporter,
		clock:    clock,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent exports the report after a ledger mutation. Reminders are
// ignored, as are events for versions already exported. A returned error
// requeues the event.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev core.Event) error {
	if ev.Kind == core.EventReminder {
		w.logger.InfoContext(ctx, "Reminder", log.FieldEntityID, ev.EntityID.String(), "message", ev.Message)
		return nil
	}

	w.mu.Lock()
	stale := ev.Version != 0 && ev.Version <= w.lastVersion
	w.mu.Unlock()
	if stale {
		w.logger.DebugContext(ctx, "Skipping already exported version",
			log.FieldEventKind, ev.Kind,
			log.FieldVersion, ev.Version)
		return nil
	}

	w.logger.InfoContext(ctx, "Processing ledger event",
		log.FieldEventKind, ev.Kind,
		log.FieldVersion, ev.Version)

	if err := w.Export(ctx); err != nil {
		return err
	}

	w.mu.Lock()
	if ev.Version > w.lastVersion {
		w.lastVersion = ev.Version
	}
	w.mu.Unlock()
	return nil
}

// Export writes the current month's report from the latest snapshot.
func (w *ExportWorker) Export(ctx context.Context) error {
	snap, err := w.source.Load(ctx)
	if errors.Is(err, core.ErrNoSnapshot) {
		w.logger.DebugContext(ctx, "No snapshot to export yet")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	window := dates.GetDateRange(dates.ThisMonth, nil, nil, w.clock.Now())
	data := report.Build(snap, window)

	ref, err := w.exporter.Export(ctx, data)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to export report",
			log.FieldOperation, log.OpExport,
			log.FieldRange, window.String(),
			log.FieldError, err)
		return fmt.Errorf("export report: %w", err)
	}

	w.mu.Lock()
	w.exports++
	w.mu.Unlock()

	w.logger.InfoContext(ctx, "Successfully exported report",
		log.FieldOperation, log.OpExport,
		log.FieldRange, window.String(),
		"sheets_ref", ref,
		"transactions", len(data.Transactions))
	return nil
}

// StartupExport exports once when the worker starts so the spreadsheet
// catches up on events missed while the worker was down.
func (w *ExportWorker) StartupExport(ctx context.Context) error {
	if err := w.Export(ctx); err != nil {
		return fmt.Errorf("startup export: %w", err)
	}
	return nil
}

// Exports reports how many exports have succeeded.
func (w *ExportWorker) Exports() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.exports
}
