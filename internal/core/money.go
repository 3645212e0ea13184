// Package core provides money parsing and loan arithmetic.
//
// Amounts are decimal.Decimal throughout; floats are only produced at the
// edges for display.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Epsilon is the outstanding balance below which a loan counts as repaid.
var Epsilon = decimal.RequireFromString("0.01")

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// ParseAmount converts a user supplied amount to a decimal rounded to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half-up on the third decimal place. Signs, empty input and zero are rejected.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,345") -> 12.35, nil
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, invalid("amount is required")
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, invalid("amount must be a plain positive number")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalid("amount must be a valid number")
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Zero, invalid("amount must be greater than 0")
	}
	return d, nil
}

// Percent returns part/whole*100, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// MonthlyPayment is the level payment of an amortizing loan.
//
//	r = annualRate/100/12
//	r > 0: P * r(1+r)^n / ((1+r)^n - 1)
//	r = 0: P / n
func MonthlyPayment(principal, annualRate decimal.Decimal, termMonths int) decimal.Decimal {
	if termMonths <= 0 {
		return decimal.Zero
	}
	n := decimal.NewFromInt(int64(termMonths))
	r := MonthlyRate(annualRate)
	if !r.IsPositive() {
		return principal.Div(n)
	}
	growth := one.Add(r).Pow(n)
	return principal.Mul(r).Mul(growth).Div(growth.Sub(one))
}

// SplitPayment allocates amount between interest and principal for a loan
// with the given outstanding balance.
func SplitPayment(amount, outstanding, annualRate decimal.Decimal, kind LoanPaymentType) (principal, interest decimal.Decimal) {
	switch kind {
	case PaymentPrincipal:
		return amount, decimal.Zero
	case PaymentInterest:
		return decimal.Zero, amount
	}
	interest = outstanding.Mul(MonthlyRate(annualRate))
	if amount.LessThan(interest) {
		return decimal.Zero, amount
	}
	return amount.Sub(interest), interest
}
