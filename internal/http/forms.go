package http

import (
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"finledger/internal/core"
	"finledger/internal/validation"
)

// FormError reports every request field that failed validation. It matches
// core.ErrInvalidInput.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, field+": "+e.Fields[field])
	}
	return strings.Join(parts, "; ")
}

func (e *FormError) Unwrap() error { return core.ErrInvalidInput }

type form struct {
	data  map[string]string
	rules map[string][]validation.Rule
}

func newForm() *form {
	return &form{data: map[string]string{}, rules: map[string][]validation.Rule{}}
}

func (f *form) field(name, value string, rules ...validation.Rule) *form {
	f.data[name] = value
	f.rules[name] = rules
	return f
}

// check runs the rules and returns a *FormError naming each failed field.
func (f *form) check() error {
	res := validation.Form(f.data, f.rules)
	if res.Valid {
		return nil
	}
	return &FormError{Fields: res.Errors}
}

func required(name string) validation.Rule { return validation.RequiredRule(name) }

func positive(name string) validation.Rule {
	return validation.NumericRule(validation.NumberOptions{FieldName: name})
}

func nonNegative(name string) validation.Rule {
	return validation.NumericRule(validation.NumberOptions{FieldName: name, AllowZero: true})
}

func dateRule(name string) validation.Rule {
	opts := validation.DefaultDateOptions()
	opts.FieldName = name
	return validation.DateRule(opts)
}

func dateValue(d *Date) string {
	if d == nil || d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

func (req transactionRequest) validate() error {
	return newForm().
		field("description", req.Description, required("Description")).
		field("amount", req.Amount.String(), positive("Amount")).
		field("category", req.Category, required("Category")).
		check()
}

func (req amountRequest) validate() error {
	return newForm().field("amount", req.Amount.String(), positive("Amount")).check()
}

func (req billRequest) validate() error {
	return newForm().
		field("name", req.Name, required("Bill name")).
		field("amount", req.Amount.String(), positive("Amount")).
		field("nextDueDate", dateValue(req.NextDueDate), dateRule("Due date")).
		check()
}

func (req budgetRequest) validate() error {
	return newForm().
		field("category", req.Category, required("Category")).
		field("amount", req.Amount.String(), positive("Amount")).
		check()
}

func (req tuitionFeeRequest) validate() error {
	return newForm().
		field("name", req.Name, required("Fee name")).
		field("amount", req.Amount.String(), positive("Amount")).
		field("dueDate", dateValue(req.DueDate), dateRule("Due date")).
		check()
}

func (req tuitionPaymentRequest) validate() error {
	return newForm().field("amount", req.Amount.String(), positive("Payment amount")).check()
}

func (req scholarshipRequest) validate() error {
	return newForm().
		field("name", req.Name, required("Scholarship name")).
		field("amount", req.Amount.String(), nonNegative("Amount")).
		check()
}

func (req loanRequest) validate() error {
	return newForm().
		field("principalAmount", req.PrincipalAmount.String(), positive("Principal amount")).
		field("interestRate", req.InterestRate.String(), nonNegative("Interest rate")).
		field("termMonths", strconv.Itoa(req.TermMonths), positive("Term")).
		field("startDate", dateValue(req.StartDate), dateRule("Start date")).
		check()
}

func (req loanPaymentRequest) validate() error {
	return newForm().field("amount", req.Amount.String(), positive("Payment amount")).check()
}
