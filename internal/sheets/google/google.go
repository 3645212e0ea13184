package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finledger/internal/report"
	ports "finledger/internal/sheets"
)

const (
	DefaultSummarySheet      = "Summary"
	DefaultTransactionsSheet = "Transactions"
)

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	summarySheet      string
	transactionsSheet string
}

// Ensure interface conformance
var (
	_ ports.ReportExporter = (*Client)(nil)
	_ ports.SummaryReader  = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Optional sheet names: GOOGLE_SUMMARY_SHEET_NAME (default "Summary"),
// GOOGLE_TRANSACTIONS_SHEET_NAME (default "Transactions").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:               svc,
		spreadsheetID:     spreadsheetID,
		summarySheet:      envOr("GOOGLE_SUMMARY_SHEET_NAME", DefaultSummarySheet),
		transactionsSheet: envOr("GOOGLE_TRANSACTIONS_SHEET_NAME", DefaultTransactionsSheet),
	}, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	// Also check the standard Google Cloud environment variable
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created successfully")
	return service, nil
}

// Export replaces the contents of the summary and transactions sheets with d.
// Missing sheets are created first.
func (c *Client) Export(ctx context.Context, d report.Data) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	if err := c.ensureSheets(ctx, c.summarySheet, c.transactionsSheet); err != nil {
		return "", err
	}

	summary := summaryRows(d)
	txs := transactionRows(d)

	_, err := c.svc.Spreadsheets.Values.BatchClear(c.spreadsheetID, &gsheet.BatchClearValuesRequest{
		Ranges: []string{c.summarySheet + "!A:Z", c.transactionsSheet + "!A:Z"},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("clear report sheets: %w", err)
	}

	summaryRange := fmt.Sprintf("%s!A1:B%d", c.summarySheet, len(summary))
	txRange := fmt.Sprintf("%s!A1:E%d", c.transactionsSheet, len(txs))
	_, err = c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data: []*gsheet.ValueRange{
			{Range: summaryRange, Values: summary},
			{Range: txRange, Values: txs},
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write report sheets: %w", err)
	}

	slog.InfoContext(ctx, "Report exported to Google Sheets",
		"spreadsheet_id", c.spreadsheetID,
		"range", d.Range.String(),
		"transactions", len(d.Transactions))
	return summaryRange, nil
}

// ensureSheets adds any of names that the spreadsheet does not have yet.
func (c *Client) ensureSheets(ctx context.Context, names ...string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet %s: %w", c.spreadsheetID, err)
	}
	existing := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			existing = append(existing, sh.Properties.Title)
		}
	}

	var reqs []*gsheet.Request
	for _, name := range missingSheets(existing, names) {
		reqs = append(reqs, &gsheet.Request{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: name}},
		})
	}
	if len(reqs) == 0 {
		return nil
	}
	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{Requests: reqs}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add sheets: %w", err)
	}
	return nil
}

// ReadSummary reads the summary sheet written by the last Export.
func (c *Client) ReadSummary(ctx context.Context) (report.Summary, error) {
	if c.svc == nil {
		return report.Summary{}, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A1:B%d", c.summarySheet, summaryHeaderRows)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return report.Summary{}, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseSummary(resp.Values)
}

func missingSheets(existing, want []string) []string {
	var out []string
	for _, name := range want {
		if indexOf(existing, name) == -1 && indexOf(out, name) == -1 {
			out = append(out, name)
		}
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
