// Package report assembles period reports from a ledger snapshot and renders
// them as CSV or JSON.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
	"finledger/internal/dates"
	"finledger/internal/derive"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat maps s to a Format, defaulting to JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", core.Invalid(fmt.Sprintf("unsupported export format %q", s))
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

type Summary struct {
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetAmount     decimal.Decimal `json:"netAmount"`
	SavingsRate   decimal.Decimal `json:"savingsRate"`
}

// BudgetLine compares one budget with the expenses of the report window.
type BudgetLine struct {
	Category  string          `json:"category"`
	Budget    decimal.Decimal `json:"budget"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
	OnTrack   bool            `json:"onTrack"`
}

// Data is everything a rendered report needs.
type Data struct {
	Range               dates.Range                `json:"dateRange"`
	Transactions        []core.Transaction         `json:"transactions"`
	Summary             Summary                    `json:"summary"`
	CategorizedExpenses map[string]decimal.Decimal `json:"categorizedExpenses"`
	BudgetAnalysis      []BudgetLine               `json:"budgetAnalysis"`
	Budgets             []core.Budget              `json:"budgets"`
	Bills               []core.Bill                `json:"bills"`
	Savings             core.Savings               `json:"savings"`
	TuitionFees         []core.TuitionFee          `json:"tuitionFees"`
	Scholarships        []core.Scholarship         `json:"scholarships"`
	Loans               []core.Loan                `json:"loans"`
}

// Build filters snap's transactions to window and computes the summary.
// Transactions keep the snapshot's most-recent-first order. snap is not
// modified.
func Build(snap *core.Snapshot, window dates.Range) Data {
	if snap == nil {
		snap = &core.Snapshot{}
	}
	snap = snap.Clone()

	txs := make([]core.Transaction, 0, len(snap.Transactions))
	for _, tx := range snap.Transactions {
		if window.Contains(tx.Date) {
			txs = append(txs, tx)
		}
	}

	income := derive.TotalIncome(txs)
	expenses := derive.TotalExpenses(txs)
	net := income.Sub(expenses)
	byCategory := derive.ExpensesByCategory(txs)

	lines := make([]BudgetLine, 0, len(snap.Budgets))
	for _, b := range snap.Budgets {
		spent := byCategory[b.Category]
		remaining := b.Amount.Sub(spent)
		lines = append(lines, BudgetLine{
			Category:  b.Category,
			Budget:    b.Amount,
			Spent:     spent,
			Remaining: remaining,
			OnTrack:   !remaining.IsNegative(),
		})
	}

	return Data{
		Range:        window,
		Transactions: txs,
		Summary: Summary{
			TotalIncome:   income,
			TotalExpenses: expenses,
			NetAmount:     net,
			SavingsRate:   core.Percent(net, income),
		},
		CategorizedExpenses: byCategory,
		BudgetAnalysis:      lines,
		Budgets:             snap.Budgets,
		Bills:               snap.Bills,
		Savings:             snap.Savings,
		TuitionFees:         snap.TuitionFees,
		Scholarships:        snap.Scholarships,
		Loans:               snap.Loans,
	}
}

// CSVHeader is the first row of every CSV export.
var CSVHeader = []string{"Date", "Description", "Category", "Type", "Amount"}

// WriteCSV writes one row per transaction in d.
func WriteCSV(w io.Writer, d Data) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, tx := range d.Transactions {
		row := []string{
			tx.Date.Format(time.DateOnly),
			tx.Description,
			tx.Category,
			string(tx.Type),
			tx.Amount.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes d as an indented JSON document.
func WriteJSON(w io.Writer, d Data) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// Write renders d in format f.
func Write(w io.Writer, f Format, d Data) error {
	if f == FormatCSV {
		return WriteCSV(w, d)
	}
	return WriteJSON(w, d)
}

// Filename is the download name for a report generated at now.
func Filename(f Format, now time.Time) string {
	return fmt.Sprintf("financial-report-%s.%s", now.Format(time.DateOnly), f)
}
