package core

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is the complete persisted state of a ledger.
type Snapshot struct {
	Balance         decimal.Decimal  `json:"balance"`
	Transactions    []Transaction    `json:"transactions"`
	Savings         Savings          `json:"savings"`
	Bills           []Bill           `json:"bills"`
	Budgets         []Budget         `json:"budgets"`
	TuitionFees     []TuitionFee     `json:"tuitionFees"`
	TuitionPayments []TuitionPayment `json:"tuitionPayments"`
	Scholarships    []Scholarship    `json:"scholarships"`
	Loans           []Loan           `json:"loans"`
	LoanPayments    []LoanPayment    `json:"loanPayments"`
}

// Normalize replaces missing collections with empty ones so a partially
// populated snapshot behaves like a zero-valued one.
func (s *Snapshot) Normalize() {
	if s.Transactions == nil {
		s.Transactions = []Transaction{}
	}
	if s.Savings.Goals == nil {
		s.Savings.Goals = []SavingsGoal{}
	}
	if s.Bills == nil {
		s.Bills = []Bill{}
	}
	for i := range s.Bills {
		if s.Bills[i].PaymentHistory == nil {
			s.Bills[i].PaymentHistory = []BillPayment{}
		}
	}
	if s.Budgets == nil {
		s.Budgets = []Budget{}
	}
	if s.TuitionFees == nil {
		s.TuitionFees = []TuitionFee{}
	}
	if s.TuitionPayments == nil {
		s.TuitionPayments = []TuitionPayment{}
	}
	if s.Scholarships == nil {
		s.Scholarships = []Scholarship{}
	}
	if s.Loans == nil {
		s.Loans = []Loan{}
	}
	if s.LoanPayments == nil {
		s.LoanPayments = []LoanPayment{}
	}
}

// Clone returns a deep copy that shares no slices or pointers with s.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Balance:         s.Balance,
		Transactions:    slices.Clone(s.Transactions),
		Savings:         Savings{TotalSaved: s.Savings.TotalSaved, SavingsGoal: s.Savings.SavingsGoal, Goals: slices.Clone(s.Savings.Goals)},
		Bills:           slices.Clone(s.Bills),
		Budgets:         slices.Clone(s.Budgets),
		TuitionFees:     slices.Clone(s.TuitionFees),
		TuitionPayments: slices.Clone(s.TuitionPayments),
		Scholarships:    slices.Clone(s.Scholarships),
		Loans:           slices.Clone(s.Loans),
		LoanPayments:    slices.Clone(s.LoanPayments),
	}
	for i := range out.Bills {
		out.Bills[i].PaymentHistory = slices.Clone(out.Bills[i].PaymentHistory)
	}
	for i := range out.Scholarships {
		out.Scholarships[i].ExpectedResponse = cloneTime(out.Scholarships[i].ExpectedResponse)
	}
	for i := range out.Loans {
		out.Loans[i].NextPaymentDate = cloneTime(out.Loans[i].NextPaymentDate)
	}
	out.Normalize()
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// TimePtr returns a pointer to a copy of t.
func TimePtr(t time.Time) *time.Time {
	return &t
}
