// Package derive computes read-only views over a ledger snapshot.
//
// The exported functions are pure: they take the collections they need plus
// the current time and return fresh values. Engine wraps them so that a fault
// in one view degrades that view to its zero value instead of failing the
// whole dashboard.
package derive

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
	"finledger/internal/dates"
)

// Observer is told whenever a view falls back to its default.
type Observer interface {
	Fault(view string, err error)
}

type nopObserver struct{}

func (nopObserver) Fault(string, error) {}

type Engine struct {
	clock    dates.Clock
	observer Observer
}

func NewEngine(clock dates.Clock, observer Observer) *Engine {
	if clock == nil {
		clock = dates.SystemClock{}
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Engine{clock: clock, observer: observer}
}

// Dashboard is every derived view of one snapshot at one instant.
type Dashboard struct {
	GeneratedAt time.Time       `json:"generatedAt"`
	MonthLabel  string          `json:"monthLabel"`
	Balance     decimal.Decimal `json:"balance"`

	TotalIncome     decimal.Decimal `json:"totalIncome"`
	TotalExpenses   decimal.Decimal `json:"totalExpenses"`
	Savings         core.Savings    `json:"savings"`
	SavingsProgress decimal.Decimal `json:"savingsProgress"`

	UpcomingBills     []core.Bill     `json:"upcomingBills"`
	OverdueBills      []core.Bill     `json:"overdueBills"`
	TotalMonthlyBills decimal.Decimal `json:"totalMonthlyBills"`

	Budgets          []BudgetStatus   `json:"budgets"`
	BudgetSummary    BudgetSummary    `json:"budgetSummary"`
	CategorySpending []CategoryAmount `json:"categorySpending"`

	TuitionFees      []FeeStatus     `json:"tuitionFees"`
	TuitionSummary   TuitionSummary  `json:"tuitionSummary"`
	UpcomingTuition  []FeeStatus     `json:"upcomingTuition"`
	OverdueTuition   []FeeStatus     `json:"overdueTuition"`
	TuitionPayments  []PaymentRecord `json:"tuitionPayments"`

	ScholarshipSummary   ScholarshipSummary `json:"scholarshipSummary"`
	UpcomingScholarships []core.Scholarship `json:"upcomingScholarships"`

	LoanSummary          LoanSummary `json:"loanSummary"`
	UpcomingLoanPayments []core.Loan `json:"upcomingLoanPayments"`
	OverdueLoanPayments  []core.Loan `json:"overdueLoanPayments"`
}

// Dashboard derives every view from snap. snap is only read.
func (e *Engine) Dashboard(snap *core.Snapshot) Dashboard {
	now := e.clock.Now()
	if snap == nil {
		e.observer.Fault("dashboard", fmt.Errorf("nil snapshot"))
		snap = &core.Snapshot{}
	}

	d := Dashboard{
		GeneratedAt: now,
		MonthLabel:  dates.CurrentMonthLabel(now),
		Balance:     snap.Balance,
		Savings:     snap.Savings,
	}

	d.TotalIncome = safely(e, "total_income", decimal.Zero, func() decimal.Decimal {
		return TotalIncome(snap.Transactions)
	})
	d.TotalExpenses = safely(e, "total_expenses", decimal.Zero, func() decimal.Decimal {
		return TotalExpenses(snap.Transactions)
	})
	d.SavingsProgress = safely(e, "savings_progress", decimal.Zero, func() decimal.Decimal {
		return SavingsProgress(snap.Savings)
	})

	d.UpcomingBills = safely(e, "upcoming_bills", []core.Bill{}, func() []core.Bill {
		return UpcomingBills(snap.Bills, now)
	})
	d.OverdueBills = safely(e, "overdue_bills", []core.Bill{}, func() []core.Bill {
		return OverdueBills(snap.Bills, now)
	})
	d.TotalMonthlyBills = safely(e, "total_monthly_bills", decimal.Zero, func() decimal.Decimal {
		return TotalMonthlyBills(snap.Bills)
	})

	d.Budgets = safely(e, "current_month_budgets", []BudgetStatus{}, func() []BudgetStatus {
		return CurrentMonthBudgets(snap.Budgets, snap.Transactions, now)
	})
	d.BudgetSummary = safely(e, "budget_summary", BudgetSummary{}, func() BudgetSummary {
		return BudgetSummaryOf(d.Budgets)
	})
	d.CategorySpending = safely(e, "category_spending", []CategoryAmount{}, func() []CategoryAmount {
		return CategorySpending(snap.Transactions, now)
	})

	d.TuitionFees = safely(e, "current_semester_fees", []FeeStatus{}, func() []FeeStatus {
		return CurrentSemesterFees(snap.TuitionFees, snap.TuitionPayments, now)
	})
	d.TuitionSummary = safely(e, "tuition_summary", TuitionSummary{}, func() TuitionSummary {
		return TuitionSummaryOf(d.TuitionFees)
	})
	d.UpcomingTuition = safely(e, "upcoming_tuition_deadlines", []FeeStatus{}, func() []FeeStatus {
		return UpcomingTuitionDeadlines(d.TuitionFees, now)
	})
	d.OverdueTuition = safely(e, "overdue_tuition_fees", []FeeStatus{}, func() []FeeStatus {
		return OverdueTuitionFees(d.TuitionFees)
	})
	d.TuitionPayments = safely(e, "tuition_payment_history", []PaymentRecord{}, func() []PaymentRecord {
		return TuitionPaymentHistory(snap.TuitionFees, snap.TuitionPayments)
	})

	d.ScholarshipSummary = safely(e, "scholarship_summary", ScholarshipSummary{}, func() ScholarshipSummary {
		return ScholarshipSummaryOf(snap.Scholarships, now)
	})
	d.UpcomingScholarships = safely(e, "upcoming_scholarship_deadlines", []core.Scholarship{}, func() []core.Scholarship {
		return UpcomingScholarshipDeadlines(snap.Scholarships, now)
	})

	d.LoanSummary = safely(e, "loan_summary", LoanSummary{}, func() LoanSummary {
		return LoanSummaryOf(snap.Loans, snap.LoanPayments)
	})
	d.UpcomingLoanPayments = safely(e, "upcoming_loan_payments", []core.Loan{}, func() []core.Loan {
		return UpcomingLoanPayments(snap.Loans, now)
	})
	d.OverdueLoanPayments = safely(e, "overdue_loan_payments", []core.Loan{}, func() []core.Loan {
		return OverdueLoanPayments(snap.Loans, now)
	})
	return d
}

// Schedule returns the payoff schedule for a loan, or nil if it cannot be
// computed.
func (e *Engine) Schedule(loan core.Loan) []ScheduleRow {
	return safely[[]ScheduleRow](e, "amortization_schedule", nil, func() []ScheduleRow {
		return AmortizationSchedule(loan)
	})
}

func safely[T any](e *Engine, view string, fallback T, fn func() T) (out T) {
	defer func() {
		if r := recover(); r != nil {
			e.observer.Fault(view, fmt.Errorf("recovered: %v", r))
			out = fallback
		}
	}()
	return fn()
}
