package google

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finledger/internal/report"
)

const (
	labelPeriod        = "Period"
	labelTotalIncome   = "Total Income"
	labelTotalExpenses = "Total Expenses"
	labelNetAmount     = "Net Amount"
	labelSavingsRate   = "Savings Rate"

	// Metric header plus the five metric rows.
	summaryHeaderRows = 6
)

// summaryRows lays out the summary sheet: the metrics block, a blank row, then
// expenses per category, largest first.
func summaryRows(d report.Data) [][]interface{} {
	s := d.Summary
	rows := [][]interface{}{
		{"Metric", "Value"},
		{labelPeriod, d.Range.String()},
		{labelTotalIncome, s.TotalIncome.StringFixed(2)},
		{labelTotalExpenses, s.TotalExpenses.StringFixed(2)},
		{labelNetAmount, s.NetAmount.StringFixed(2)},
		{labelSavingsRate, s.SavingsRate.StringFixed(1) + "%"},
	}

	type entry struct {
		name   string
		amount decimal.Decimal
	}
	cats := make([]entry, 0, len(d.CategorizedExpenses))
	for name, amt := range d.CategorizedExpenses {
		cats = append(cats, entry{name, amt})
	}
	slices.SortFunc(cats, func(a, b entry) int {
		if c := b.amount.Cmp(a.amount); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})

	if len(cats) > 0 {
		rows = append(rows, []interface{}{}, []interface{}{"Category", "Spent"})
		for _, c := range cats {
			rows = append(rows, []interface{}{c.name, c.amount.StringFixed(2)})
		}
	}
	return rows
}

func transactionRows(d report.Data) [][]interface{} {
	rows := make([][]interface{}, 0, len(d.Transactions)+1)
	header := make([]interface{}, len(report.CSVHeader))
	for i, h := range report.CSVHeader {
		header[i] = h
	}
	rows = append(rows, header)
	for _, tx := range d.Transactions {
		rows = append(rows, []interface{}{
			tx.Date.Format(time.DateOnly),
			tx.Description,
			tx.Category,
			string(tx.Type),
			tx.Amount.StringFixed(2),
		})
	}
	return rows
}

// parseSummary reads the metrics block of a summary sheet. Labels are matched
// case-insensitively so hand edits to capitalization are tolerated.
func parseSummary(values [][]interface{}) (report.Summary, error) {
	var s report.Summary
	found := map[string]bool{}
	targets := map[string]*decimal.Decimal{
		labelTotalIncome:   &s.TotalIncome,
		labelTotalExpenses: &s.TotalExpenses,
		labelNetAmount:     &s.NetAmount,
		labelSavingsRate:   &s.SavingsRate,
	}

	for _, raw := range values {
		row := toStrings(raw)
		label := safeGet(row, 0)
		for name, dst := range targets {
			if !strings.EqualFold(label, name) {
				continue
			}
			v, ok := parseAmount(safeGet(row, 1))
			if !ok {
				return report.Summary{}, fmt.Errorf("unexpected summary value for %s: %q", name, safeGet(row, 1))
			}
			*dst = v
			found[name] = true
		}
	}

	var missing []string
	for _, name := range []string{labelTotalIncome, labelTotalExpenses, labelNetAmount, labelSavingsRate} {
		if !found[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return report.Summary{}, fmt.Errorf("unexpected summary layout: missing %s", strings.Join(missing, ","))
	}
	return s, nil
}

// parseAmount accepts the formatted values Sheets returns: thousands
// separators, a trailing percent sign, a leading currency code.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	if i := strings.LastIndex(s, " "); i >= 0 {
		s = s[i+1:]
	}
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
