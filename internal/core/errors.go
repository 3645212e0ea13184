package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrExceedsLimit      = errors.New("exceeds limit")
	ErrNotFound          = errors.New("not found")
	ErrPersistence       = errors.New("snapshot not persisted")
	ErrNoSnapshot        = errors.New("no snapshot stored")
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

// Invalid wraps msg as an ErrInvalidInput.
func Invalid(msg string) error {
	return invalid(msg)
}

// PersistError reports that a mutation was applied in memory but the
// resulting snapshot could not be saved.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrPersistence, e.Err)
}

func (e *PersistError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// IsWarning reports whether err only signals a failed save. The mutation that
// produced it has already taken effect.
func IsWarning(err error) bool {
	return err != nil && errors.Is(err, ErrPersistence)
}
