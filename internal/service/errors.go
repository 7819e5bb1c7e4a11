package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthorized is returned when an operation runs without a caller identity.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrGoalsMissing is wrapped in a PersistenceError when an update matched no goals row.
	ErrGoalsMissing = errors.New("goals row missing")
	// ErrFoodNotFound is returned by FoodService.Get for unknown ids.
	ErrFoodNotFound = errors.New("food not found")
)

// ValidationError is a caller-fixable input problem.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// PersistenceError is a failed store write, or a write that affected no rows
// when one was required.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ExternalLookupError is a failure talking to the nutrition provider.
type ExternalLookupError struct {
	Provider string
	Err      error
}

func (e *ExternalLookupError) Error() string {
	return fmt.Sprintf("%s lookup failed: %v", e.Provider, e.Err)
}

func (e *ExternalLookupError) Unwrap() error {
	return e.Err
}

func persistenceErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
