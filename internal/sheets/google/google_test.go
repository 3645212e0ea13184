package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finledger/internal/core"
	"finledger/internal/dates"
	"finledger/internal/report"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleReport() report.Data {
	return report.Data{
		Range: dates.Range{
			Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		Transactions: []core.Transaction{
			{ID: uuid.New(), Description: "Groceries", Category: "Food", Type: core.Expense, Amount: d("120.5"), Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
			{ID: uuid.New(), Description: "Salary", Category: "Work", Type: core.Income, Amount: d("1000"), Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		},
		Summary: report.Summary{
			TotalIncome:   d("1000"),
			TotalExpenses: d("200"),
			NetAmount:     d("800"),
			SavingsRate:   d("80"),
		},
		CategorizedExpenses: map[string]decimal.Decimal{"Food": d("120.5"), "Books": d("79.5"), "Art": d("79.5")},
	}
}

func TestNewFromEnv_MissingSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	_, err := NewFromEnv(context.Background())
	require.Error(t, err)
	assert.Equal(t, "missing GOOGLE_SPREADSHEET_ID", err.Error())
}

func TestNewFromEnv_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "sheet-id")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := NewFromEnv(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")
}

func TestSummaryRows(t *testing.T) {
	rows := summaryRows(sampleReport())

	require.Len(t, rows, summaryHeaderRows+2+3)
	assert.Equal(t, []interface{}{"Period", "2024-03-01..2024-03-15"}, rows[1])
	assert.Equal(t, []interface{}{"Savings Rate", "80.0%"}, rows[5])
	assert.Empty(t, rows[6])
	// Largest first, ties by name.
	assert.Equal(t, []interface{}{"Food", "120.50"}, rows[8])
	assert.Equal(t, []interface{}{"Art", "79.50"}, rows[9])
	assert.Equal(t, []interface{}{"Books", "79.50"}, rows[10])
}

func TestTransactionRows(t *testing.T) {
	rows := transactionRows(sampleReport())

	require.Len(t, rows, 3)
	assert.Equal(t, []interface{}{"Date", "Description", "Category", "Type", "Amount"}, rows[0])
	assert.Equal(t, []interface{}{"2024-03-10", "Groceries", "Food", "expense", "120.50"}, rows[1])
}

func TestParseSummaryReadsWrittenLayout(t *testing.T) {
	got, err := parseSummary(summaryRows(sampleReport()))
	require.NoError(t, err)
	assert.True(t, got.TotalIncome.Equal(d("1000")))
	assert.True(t, got.NetAmount.Equal(d("800")))
	assert.True(t, got.SavingsRate.Equal(d("80")))
}

func TestParseSummaryFormattedValues(t *testing.T) {
	values := [][]interface{}{
		{"Metric", "Value"},
		{"total income", "Ksh 1,250.00"},
		{"Total Expenses", 300},
		{"Net Amount", "950.00"},
		{"Savings Rate", "76.0%"},
	}
	got, err := parseSummary(values)
	require.NoError(t, err)
	assert.True(t, got.TotalIncome.Equal(d("1250")))
	assert.True(t, got.TotalExpenses.Equal(d("300")))
	assert.True(t, got.SavingsRate.Equal(d("76")))
}

func TestParseSummaryErrors(t *testing.T) {
	_, err := parseSummary([][]interface{}{{"Total Income", "10"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing Total Expenses,Net Amount,Savings Rate")

	_, err = parseSummary([][]interface{}{{"Total Income", "n/a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected summary value")
}

func TestMissingSheets(t *testing.T) {
	assert.Equal(t, []string{"Transactions"}, missingSheets([]string{"summary", "Other"}, []string{"Summary", "Transactions", "Transactions"}))
	assert.Nil(t, missingSheets([]string{"Summary"}, []string{"Summary"}))
}

func TestExportWithoutService(t *testing.T) {
	_, err := (&Client{}).Export(context.Background(), report.Data{})
	assert.Error(t, err)
	_, err = (&Client{}).ReadSummary(context.Background())
	assert.Error(t, err)
}

type recordedCall struct {
	method string
	path   string
	body   string
}

func TestExportAgainstFakeAPI(t *testing.T) {
	var mu sync.Mutex
	var calls []recordedCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, recordedCall{r.Method, r.URL.Path, string(body)})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"sheets": []any{map[string]any{"properties": map[string]any{"title": "Summary"}}},
			})
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	c := &Client{svc: svc, spreadsheetID: "abc", summarySheet: DefaultSummarySheet, transactionsSheet: DefaultTransactionsSheet}
	ref, err := c.Export(context.Background(), sampleReport())
	require.NoError(t, err)
	assert.Equal(t, "Summary!A1:B11", ref)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 4)
	assert.Equal(t, http.MethodGet, calls[0].method)
	assert.Contains(t, calls[1].path, ":batchUpdate")
	assert.Contains(t, calls[1].body, `"title":"Transactions"`)
	assert.NotContains(t, calls[1].body, `"title":"Summary"`)
	assert.Contains(t, calls[2].path, "values:batchClear")
	assert.True(t, strings.HasSuffix(calls[3].path, "values:batchUpdate"))
	assert.Contains(t, calls[3].body, `"Transactions!A1:E3"`)
	assert.Contains(t, calls[3].body, "USER_ENTERED")
}
