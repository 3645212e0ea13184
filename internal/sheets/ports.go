package sheets

import (
	"context"

	"finledger/internal/report"
)

// Ports for outbound adapters.
type (
	// ReportExporter publishes a report to a spreadsheet and returns a
	// reference to what it wrote.
	ReportExporter interface {
		Export(ctx context.Context, d report.Data) (ref string, err error)
	}

	// SummaryReader reads back the summary of the last exported report.
	SummaryReader interface {
		ReadSummary(ctx context.Context) (report.Summary, error)
	}
)
