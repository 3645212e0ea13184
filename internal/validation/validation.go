// Package validation checks raw form values before they are turned into
// ledger inputs. Validators never panic and never mutate anything; each
// returns a Result carrying a human readable message on failure.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Result is the outcome of a single validation.
type Result struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

var ok = Result{Valid: true}

func fail(format string, args ...any) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

// Required fails when value is empty after trimming.
func Required(value, fieldName string) Result {
	if fieldName == "" {
		fieldName = "Field"
	}
	if strings.TrimSpace(value) == "" {
		return fail("%s is required", fieldName)
	}
	return ok
}

// NumberOptions configures Number. A zero Min means no lower bound beyond the
// positivity rule; an invalid Max means no upper bound.
type NumberOptions struct {
	Min       decimal.Decimal
	Max       decimal.NullDecimal
	AllowZero bool
	FieldName string
}

// Number checks, in order: numeric, positive (unless AllowZero), at least
// Min, at most Max.
func Number(value string, opts NumberOptions) Result {
	name := opts.FieldName
	if name == "" {
		name = "Amount"
	}
	n, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return fail("%s must be a valid number", name)
	}
	if !opts.AllowZero && !n.IsPositive() {
		return fail("%s must be greater than 0", name)
	}
	if n.LessThan(opts.Min) {
		return fail("%s must be at least %s", name, opts.Min)
	}
	if opts.Max.Valid && n.GreaterThan(opts.Max.Decimal) {
		return fail("%s cannot exceed %s", name, opts.Max.Decimal)
	}
	return ok
}

// DateOptions configures Date. Past and future are judged against the start
// of Now's day; a zero Now uses the wall clock.
type DateOptions struct {
	AllowPast   bool
	AllowFuture bool
	FieldName   string
	Now         time.Time
}

// DefaultDateOptions allows any valid date.
func DefaultDateOptions() DateOptions {
	return DateOptions{AllowPast: true, AllowFuture: true}
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, time.DateTime, time.DateOnly}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// Date fails when value is missing, unparsable or on the wrong side of today.
func Date(value string, opts DateOptions) Result {
	name := opts.FieldName
	if name == "" {
		name = "Date"
	}
	if strings.TrimSpace(value) == "" {
		return fail("%s is required", name)
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	// A calendar date names a day in now's zone.
	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(value), now.Location())
	if err != nil {
		if t, err = ParseDate(value); err != nil {
			return fail("%s must be a valid date", name)
		}
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	if !opts.AllowPast && t.Before(today) {
		return fail("%s cannot be in the past", name)
	}
	if !opts.AllowFuture && t.After(today) {
		return fail("%s cannot be in the future", name)
	}
	return ok
}

// Email fails on a missing or malformed address.
func Email(value string) Result {
	value = strings.TrimSpace(value)
	if value == "" {
		return fail("Email is required")
	}
	if !emailPattern.MatchString(value) {
		return fail("Please enter a valid email address")
	}
	return ok
}

// Rule validates one field value.
type Rule func(value, fieldName string) Result

// FormResult collects the first failure of every field.
type FormResult struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// Form applies each field's rules in order, stopping at the first failure
// for that field, and reports failures for all fields.
func Form(data map[string]string, rules map[string][]Rule) FormResult {
	res := FormResult{Valid: true, Errors: map[string]string{}}
	for field, fieldRules := range rules {
		value := data[field]
		for _, rule := range fieldRules {
			if r := rule(value, field); !r.Valid {
				res.Errors[field] = r.Error
				res.Valid = false
				break
			}
		}
	}
	return res
}

// RequiredRule builds a Rule that uses displayName in its message.
func RequiredRule(displayName string) Rule {
	return func(value, _ string) Result { return Required(value, displayName) }
}

func NumericRule(opts NumberOptions) Rule {
	return func(value, _ string) Result { return Number(value, opts) }
}

func DateRule(opts DateOptions) Rule {
	return func(value, _ string) Result { return Date(value, opts) }
}

func EmailRule() Rule {
	return func(value, _ string) Result { return Email(value) }
}
