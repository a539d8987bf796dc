/*
errors.go - Centralized error types for the budget engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers can match with errors.Is/errors.As.

ERROR CATEGORIES:
  1. Validation errors - bad ranges, negative amounts, non-finite inputs
  2. Lookup errors - missing budgets/payments at the store boundary

USAGE:
  if errors.Is(err, engine.ErrInvalidInput) {
      // 400 to the client
  }

SEE ALSO:
  - period.go: Returns InvalidRangeError
  - tracker.go: Returns InvalidBudgetError
  - planner.go: Returns InvalidInputError
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRange is returned when a period ends before it starts.
	ErrInvalidRange = errors.New("invalid period: end before start")

	// ErrInvalidBudget is returned when a budget carries a negative total.
	ErrInvalidBudget = errors.New("invalid budget: negative total amount")

	// ErrInvalidInput is returned when planner inputs are negative or
	// non-finite. Inputs are never silently coerced.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBudgetNotFound is returned when no budget matches the query
	// (typically: no active budget covers today).
	ErrBudgetNotFound = errors.New("budget not found")

	// ErrPaymentNotFound is returned when a referenced payment doesn't exist.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrExpenseNotFound is returned when a referenced expense doesn't exist.
	ErrExpenseNotFound = errors.New("expense not found")

	// ErrCategoryNotFound is returned when a referenced category doesn't exist.
	ErrCategoryNotFound = errors.New("category not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidRangeError reports a period whose end precedes its start.
type InvalidRangeError struct {
	Start TimePoint
	End   TimePoint
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid period: end %s before start %s", e.End, e.Start)
}

func (e *InvalidRangeError) Unwrap() error {
	return ErrInvalidRange
}

// InvalidBudgetError reports a budget that fails validation.
type InvalidBudgetError struct {
	BudgetID BudgetID
	Reason   string
}

func (e *InvalidBudgetError) Error() string {
	return fmt.Sprintf("invalid budget %s: %s", e.BudgetID, e.Reason)
}

func (e *InvalidBudgetError) Unwrap() error {
	return ErrInvalidBudget
}

// InvalidInputError reports a planner input that fails validation.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidBudget) ||
		errors.Is(err, ErrInvalidInput)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBudgetNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrExpenseNotFound) ||
		errors.Is(err, ErrCategoryNotFound)
}
