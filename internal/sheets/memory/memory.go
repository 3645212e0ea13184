// Package memory is an in-process spreadsheet exporter used in development
// and tests when no Google spreadsheet is configured.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"finledger/internal/report"
	"finledger/internal/sheets"
)

var _ interface {
	sheets.ReportExporter
	sheets.SummaryReader
} = (*Exporter)(nil)

type Exporter struct {
	mu      sync.Mutex
	exports []report.Data
}

func New() *Exporter {
	return &Exporter{}
}

// Export records d and returns a synthetic reference.
func (e *Exporter) Export(ctx context.Context, d report.Data) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.exports = append(e.exports, d)
	return fmt.Sprintf("mem:%d", len(e.exports)), nil
}

// ReadSummary returns the summary of the last export.
func (e *Exporter) ReadSummary(_ context.Context) (report.Summary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.exports) == 0 {
		return report.Summary{}, errors.New("nothing exported yet")
	}
	return e.exports[len(e.exports)-1].Summary, nil
}

// Exports returns a copy of every recorded export, oldest first.
func (e *Exporter) Exports() []report.Data {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]report.Data(nil), e.exports...)
}
