package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	ScholarshipAvailable ScholarshipStatus = "available"
	ScholarshipApplied   ScholarshipStatus = "applied"
	ScholarshipReceived  ScholarshipStatus = "received"
	ScholarshipRejected  ScholarshipStatus = "rejected"
)

const (
	LoanActive LoanStatus = "active"
	LoanPaid   LoanStatus = "paid"
)

const (
	PaymentRegular   LoanPaymentType = "regular"
	PaymentPrincipal LoanPaymentType = "principal"
	PaymentInterest  LoanPaymentType = "interest"
)

// Categories and descriptions used for transactions the ledger creates itself.
const (
	CategorySavings           = "Savings"
	CategorySavingsWithdrawal = "Savings Withdrawal"
	CategoryBills             = "Bills"
	CategoryEducation         = "Education"
	CategoryLoanPayment       = "Loan Payment"

	DescSavingsDeposit    = "Transfer to savings"
	DescSavingsWithdrawal = "Withdrawal from savings"
)

type (
	TransactionType   string
	Frequency         string
	ScholarshipStatus string
	LoanStatus        string
	LoanPaymentType   string

	Transaction struct {
		ID          uuid.UUID       `json:"id"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
		Date        time.Time       `json:"date"`
	}

	SavingsGoal struct {
		ID        uuid.UUID       `json:"id"`
		Name      string          `json:"name"`
		Target    decimal.Decimal `json:"target"`
		Saved     decimal.Decimal `json:"saved"`
		CreatedAt time.Time       `json:"createdAt"`
	}

	Savings struct {
		TotalSaved  decimal.Decimal `json:"totalSaved"`
		SavingsGoal decimal.Decimal `json:"savingsGoal"`
		Goals       []SavingsGoal   `json:"goals"`
	}

	BillPayment struct {
		Date   time.Time       `json:"date"`
		Amount decimal.Decimal `json:"amount"`
	}

	Bill struct {
		ID             uuid.UUID       `json:"id"`
		Name           string          `json:"name"`
		Amount         decimal.Decimal `json:"amount"`
		Category       string          `json:"category,omitempty"`
		Frequency      Frequency       `json:"frequency"`
		NextDueDate    time.Time       `json:"nextDueDate"`
		IsPaid         bool            `json:"isPaid"`
		PaymentHistory []BillPayment   `json:"paymentHistory"`
		CreatedAt      time.Time       `json:"createdAt"`
	}

	Budget struct {
		ID        uuid.UUID       `json:"id"`
		Category  string          `json:"category"`
		Amount    decimal.Decimal `json:"amount"`
		CreatedAt time.Time       `json:"createdAt"`
	}

	TuitionFee struct {
		ID          uuid.UUID       `json:"id"`
		Name        string          `json:"name"`
		Type        string          `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		DueDate     time.Time       `json:"dueDate"`
		Semester    string          `json:"semester"`
		Description string          `json:"description,omitempty"`
		CreatedAt   time.Time       `json:"createdAt"`
	}

	TuitionPayment struct {
		ID        uuid.UUID       `json:"id"`
		FeeID     uuid.UUID       `json:"feeId"`
		Amount    decimal.Decimal `json:"amount"`
		Method    string          `json:"method"`
		Reference string          `json:"reference,omitempty"`
		Notes     string          `json:"notes,omitempty"`
		Date      time.Time       `json:"date"`
	}

	Scholarship struct {
		ID               uuid.UUID         `json:"id"`
		Name             string            `json:"name"`
		Type             string            `json:"type"`
		Amount           decimal.Decimal   `json:"amount"`
		Provider         string            `json:"provider"`
		Deadline         time.Time         `json:"deadline"`
		ExpectedResponse *time.Time        `json:"expectedResponse"`
		Requirements     string            `json:"requirements,omitempty"`
		Website          string            `json:"website,omitempty"`
		Notes            string            `json:"notes,omitempty"`
		Status           ScholarshipStatus `json:"status"`
		CreatedAt        time.Time         `json:"createdAt"`
	}

	Loan struct {
		ID                  uuid.UUID       `json:"id"`
		Name                string          `json:"name"`
		Type                string          `json:"type"`
		Lender              string          `json:"lender"`
		PrincipalAmount     decimal.Decimal `json:"principalAmount"`
		OutstandingBalance  decimal.Decimal `json:"outstandingBalance"`
		InterestRate        decimal.Decimal `json:"interestRate"`
		TermMonths          int             `json:"termMonths"`
		MonthlyPayment      decimal.Decimal `json:"monthlyPayment"`
		StartDate           time.Time       `json:"startDate"`
		GracePeriodMonths   int             `json:"gracePeriodMonths"`
		NextPaymentDate     *time.Time      `json:"nextPaymentDate"`
		EstimatedPayoffDate time.Time       `json:"estimatedPayoffDate"`
		Status              LoanStatus      `json:"status"`
		Notes               string          `json:"notes,omitempty"`
		CreatedAt           time.Time       `json:"createdAt"`
	}

	LoanPayment struct {
		ID              uuid.UUID       `json:"id"`
		LoanID          uuid.UUID       `json:"loanId"`
		Amount          decimal.Decimal `json:"amount"`
		PrincipalAmount decimal.Decimal `json:"principalAmount"`
		InterestAmount  decimal.Decimal `json:"interestAmount"`
		PaymentType     LoanPaymentType `json:"paymentType"`
		Method          string          `json:"method,omitempty"`
		Reference       string          `json:"reference,omitempty"`
		Notes           string          `json:"notes,omitempty"`
		Date            time.Time       `json:"date"`
	}
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (f Frequency) Valid() bool {
	switch f {
	case Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (s ScholarshipStatus) Valid() bool {
	switch s {
	case ScholarshipAvailable, ScholarshipApplied, ScholarshipReceived, ScholarshipRejected:
		return true
	}
	return false
}

func (s LoanStatus) Valid() bool {
	return s == LoanActive || s == LoanPaid
}

func (p LoanPaymentType) Valid() bool {
	switch p {
	case PaymentRegular, PaymentPrincipal, PaymentInterest:
		return true
	}
	return false
}

// Signed returns the amount with the sign it contributes to the balance.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == Income {
		return t.Amount
	}
	return t.Amount.Neg()
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return invalid("description is required")
	}
	if strings.TrimSpace(t.Category) == "" {
		return invalid("category is required")
	}
	if !t.Amount.IsPositive() {
		return invalid("amount must be greater than 0")
	}
	if !t.Type.Valid() {
		return invalid(fmt.Sprintf("unknown transaction type %q", t.Type))
	}
	return nil
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return invalid("bill name is required")
	}
	if !b.Amount.IsPositive() {
		return invalid("bill amount must be greater than 0")
	}
	if _, err := GetAdvancer(b.Frequency); err != nil {
		return err
	}
	if b.NextDueDate.IsZero() {
		return invalid("bill due date is required")
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return invalid("budget category is required")
	}
	if !b.Amount.IsPositive() {
		return invalid("budget amount must be greater than 0")
	}
	return nil
}

func (f TuitionFee) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return invalid("fee name is required")
	}
	if !f.Amount.IsPositive() {
		return invalid("fee amount must be greater than 0")
	}
	if f.DueDate.IsZero() {
		return invalid("fee due date is required")
	}
	return nil
}

func (s Scholarship) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return invalid("scholarship name is required")
	}
	if s.Amount.IsNegative() {
		return invalid("scholarship amount cannot be negative")
	}
	if !s.Status.Valid() {
		return invalid(fmt.Sprintf("unknown scholarship status %q", s.Status))
	}
	return nil
}

func (l Loan) Validate() error {
	if !l.PrincipalAmount.IsPositive() {
		return invalid("principal amount must be greater than 0")
	}
	if l.InterestRate.IsNegative() {
		return invalid("interest rate cannot be negative")
	}
	if l.TermMonths <= 0 {
		return invalid("term must be at least 1 month")
	}
	if l.GracePeriodMonths < 0 {
		return invalid("grace period cannot be negative")
	}
	if l.StartDate.IsZero() {
		return invalid("start date is required")
	}
	if !l.Status.Valid() {
		return invalid(fmt.Sprintf("unknown loan status %q", l.Status))
	}
	return nil
}

// MonthlyRate is the annual percentage rate spread over twelve months.
func (l Loan) MonthlyRate() decimal.Decimal {
	return MonthlyRate(l.InterestRate)
}

func MonthlyRate(annualRate decimal.Decimal) decimal.Decimal {
	return annualRate.Div(decimal.NewFromInt(1200))
}
