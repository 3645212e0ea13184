package derive

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finledger/internal/core"
	"finledger/internal/dates"
)

var now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(m time.Month, dd int) time.Time { return time.Date(2024, m, dd, 0, 0, 0, 0, time.UTC) }

func expense(category, amount string, date time.Time) core.Transaction {
	return core.Transaction{ID: uuid.New(), Description: category, Category: category, Amount: d(amount), Type: core.Expense, Date: date}
}

type faults struct {
	views []string
}

func (f *faults) Fault(view string, _ error) { f.views = append(f.views, view) }

func TestBudgetStatusBoundaries(t *testing.T) {
	tests := []struct {
		spent string
		want  BudgetState
	}{
		{"0", BudgetGood},
		{"800", BudgetGood},
		{"800.10", BudgetWarning},
		{"1000", BudgetWarning},
		{"1000.10", BudgetOver},
	}
	for _, tt := range tests {
		t.Run(tt.spent, func(t *testing.T) {
			budgets := []core.Budget{{ID: uuid.New(), Category: "Food", Amount: d("1000")}}
			var txs []core.Transaction
			if !d(tt.spent).IsZero() {
				txs = append(txs, expense("Food", tt.spent, day(3, 2)))
			}

			got := CurrentMonthBudgets(budgets, txs, now)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Status, "percentage %s", got[0].Percentage)
		})
	}
}

func TestCurrentMonthBudgetsFiltering(t *testing.T) {
	budgets := []core.Budget{
		{ID: uuid.New(), Category: "Food", Amount: d("200")},
		{ID: uuid.New(), Category: "Fun", Amount: d("100")},
	}
	txs := []core.Transaction{
		expense("Food", "50", day(3, 1)),
		expense("Food", "25.50", day(3, 14)),
		expense("Food", "999", day(2, 28)),                                   // last month
		expense("Food", "999", time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC)), // last year
		expense("Food", "999", time.Time{}),                                  // malformed
		{Description: "refund", Category: "Food", Amount: d("20"), Type: core.Income, Date: day(3, 5)},
		expense("Fun", "120", day(3, 10)),
	}

	got := CurrentMonthBudgets(budgets, txs, now)
	require.Len(t, got, 2)

	assert.True(t, got[0].Spent.Equal(d("75.50")))
	assert.True(t, got[0].Remaining.Equal(d("124.50")))
	assert.Equal(t, BudgetGood, got[0].Status)
	assert.Equal(t, BudgetOver, got[1].Status)
	assert.True(t, got[1].Remaining.Equal(d("-20")))

	sum := BudgetSummaryOf(got)
	assert.True(t, sum.TotalBudgeted.Equal(d("300")))
	assert.True(t, sum.TotalSpent.Equal(d("195.50")))
	assert.True(t, sum.TotalRemaining.Equal(d("104.50")))
	assert.Equal(t, 1, sum.OverBudget)
	assert.Equal(t, 0, sum.WarningBudgets)
}

func TestCategorySpending(t *testing.T) {
	txs := []core.Transaction{
		expense("Food", "30", day(3, 1)),
		expense("Rent", "700", day(3, 1)),
		expense("Food", "20", day(3, 3)),
		expense("Books", "50", day(3, 4)),
		expense("Rent", "700", day(2, 1)),
	}
	got := CategorySpending(txs, now)
	require.Len(t, got, 3)
	assert.Equal(t, "Rent", got[0].Category)
	// Ties are ordered by name.
	assert.Equal(t, "Books", got[1].Category)
	assert.Equal(t, "Food", got[2].Category)
	assert.True(t, got[2].Amount.Equal(d("50")))
}

func TestTotalsAndSavingsProgress(t *testing.T) {
	txs := []core.Transaction{
		{Type: core.Income, Amount: d("1000")},
		{Type: core.Expense, Amount: d("250.25")},
		{Type: core.Expense, Amount: d("49.75")},
	}
	assert.True(t, TotalIncome(txs).Equal(d("1000")))
	assert.True(t, TotalExpenses(txs).Equal(d("300")))

	assert.True(t, SavingsProgress(core.Savings{TotalSaved: d("250"), SavingsGoal: d("1000")}).Equal(d("25")))
	assert.True(t, SavingsProgress(core.Savings{TotalSaved: d("250")}).IsZero())
}

func TestBills(t *testing.T) {
	bills := []core.Bill{
		{Name: "late", Amount: d("10"), Frequency: core.Monthly, NextDueDate: day(3, 10)},
		{Name: "soon", Amount: d("100"), Frequency: core.Weekly, NextDueDate: day(3, 20)},
		{Name: "sooner", Amount: d("1200"), Frequency: core.Yearly, NextDueDate: day(3, 16)},
		{Name: "far", Amount: d("5"), Frequency: core.Monthly, NextDueDate: day(4, 30)},
		{Name: "paid", Amount: d("5"), Frequency: core.Monthly, NextDueDate: day(3, 1), IsPaid: true},
	}

	upcoming := UpcomingBills(bills, now)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "sooner", upcoming[0].Name)
	assert.Equal(t, "soon", upcoming[1].Name)

	overdue := OverdueBills(bills, now)
	require.Len(t, overdue, 1)
	assert.Equal(t, "late", overdue[0].Name)

	// 10 + 100*4.33 + 1200/12 + 5 + 5
	assert.True(t, TotalMonthlyBills(bills).Equal(d("553")))
}

func TestCurrentSemesterFees(t *testing.T) {
	spring := core.TuitionFee{ID: uuid.New(), Name: "Spring", Amount: d("500"), DueDate: day(4, 1)}
	lab := core.TuitionFee{ID: uuid.New(), Name: "Lab", Amount: d("100"), DueDate: day(3, 1)}
	books := core.TuitionFee{ID: uuid.New(), Name: "Books", Amount: d("80"), DueDate: day(3, 18)}
	housing := core.TuitionFee{ID: uuid.New(), Name: "Housing", Amount: d("900"), DueDate: day(5, 1)}
	old := core.TuitionFee{ID: uuid.New(), Name: "Old", Amount: d("100"), DueDate: time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC)}

	payments := []core.TuitionPayment{
		{ID: uuid.New(), FeeID: spring.ID, Amount: d("400"), Date: day(3, 1)},
		{ID: uuid.New(), FeeID: spring.ID, Amount: d("100"), Date: day(3, 5)},
		{ID: uuid.New(), FeeID: housing.ID, Amount: d("300"), Date: day(3, 2)},
		{ID: uuid.New(), FeeID: uuid.New(), Amount: d("1"), Date: day(3, 3)},
	}

	fees := CurrentSemesterFees([]core.TuitionFee{spring, lab, books, housing, old}, payments, now)
	require.Len(t, fees, 4)

	byName := map[string]FeeStatus{}
	for _, f := range fees {
		byName[f.Name] = f
	}
	assert.Equal(t, "Lab", fees[0].Name)
	assert.Equal(t, "Housing", fees[3].Name)
	assert.Equal(t, FeePaid, byName["Spring"].Status)
	assert.True(t, byName["Spring"].Remaining.IsZero())
	assert.Equal(t, FeeOverdue, byName["Lab"].Status)
	assert.Equal(t, FeePending, byName["Books"].Status)
	assert.Equal(t, FeePartial, byName["Housing"].Status)
	assert.True(t, byName["Housing"].Remaining.Equal(d("600")))

	sum := TuitionSummaryOf(fees)
	assert.True(t, sum.TotalFees.Equal(d("1580")))
	assert.True(t, sum.TotalPaid.Equal(d("800")))
	assert.True(t, sum.TotalRemaining.Equal(d("780")))
	assert.Equal(t, 1, sum.OverdueFees)

	upcoming := UpcomingTuitionDeadlines(fees, now)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "Books", upcoming[0].Name)

	overdue := OverdueTuitionFees(fees)
	require.Len(t, overdue, 1)
	assert.Equal(t, "Lab", overdue[0].Name)

	history := TuitionPaymentHistory([]core.TuitionFee{spring, housing}, payments)
	require.Len(t, history, 4)
	assert.Equal(t, "Spring", history[0].FeeName)
	assert.Equal(t, day(3, 5), history[0].Date)
	assert.Equal(t, "Unknown Fee", history[1].FeeName)
}

func TestScholarshipSummary(t *testing.T) {
	items := []core.Scholarship{
		{Name: "a", Amount: d("1000"), Status: core.ScholarshipAvailable, Deadline: day(3, 18)},
		{Name: "b", Amount: d("500"), Status: core.ScholarshipApplied, Deadline: day(3, 16)},
		{Name: "c", Amount: d("2000"), Status: core.ScholarshipReceived, Deadline: day(3, 17)},
		{Name: "d", Amount: d("300"), Status: core.ScholarshipAvailable, Deadline: day(6, 1)},
		{Name: "e", Amount: d("50"), Status: core.ScholarshipRejected},
	}

	s := ScholarshipSummaryOf(items, now)
	assert.True(t, s.TotalAvailable.Equal(d("1300")))
	assert.True(t, s.TotalReceived.Equal(d("2000")))
	assert.Equal(t, 1, s.AppliedCount)
	assert.Equal(t, 2, s.UpcomingDeadlines)
	assert.True(t, s.ByStatus[core.ScholarshipRejected].Equal(d("50")))

	upcoming := UpcomingScholarshipDeadlines(items, now)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "b", upcoming[0].Name)
}

func TestEngineRecoversFromFaults(t *testing.T) {
	obs := &faults{}
	e := NewEngine(dates.FixedClock{T: now}, obs)

	got := safely(e, "broken_view", []string{"fallback"}, func() []string {
		var m map[string][]string
		m["x"] = nil
		return nil
	})

	assert.Equal(t, []string{"fallback"}, got)
	assert.Equal(t, []string{"broken_view"}, obs.views)
}

func TestDashboard(t *testing.T) {
	obs := &faults{}
	e := NewEngine(dates.FixedClock{T: now}, obs)

	snap := &core.Snapshot{
		Balance: d("900"),
		Transactions: []core.Transaction{
			{Type: core.Income, Amount: d("1000"), Category: "Work", Date: day(3, 1)},
			expense("Food", "100", day(3, 2)),
		},
		Budgets: []core.Budget{{Category: "Food", Amount: d("120")}},
		Savings: core.Savings{TotalSaved: d("50"), SavingsGoal: d("200")},
	}

	dash := e.Dashboard(snap)
	assert.Empty(t, obs.views)
	assert.Equal(t, now, dash.GeneratedAt)
	assert.True(t, dash.Balance.Equal(d("900")))
	assert.True(t, dash.TotalIncome.Equal(d("1000")))
	assert.True(t, dash.SavingsProgress.Equal(d("25")))
	require.Len(t, dash.Budgets, 1)
	assert.Equal(t, BudgetWarning, dash.Budgets[0].Status)
	assert.NotNil(t, dash.UpcomingBills)
	assert.NotNil(t, dash.OverdueLoanPayments)

	empty := e.Dashboard(nil)
	assert.True(t, empty.TotalIncome.IsZero())
	assert.Equal(t, []string{"dashboard"}, obs.views)
}
