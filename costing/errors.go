/*
errors.go - Centralized error types for the costing engine

PURPOSE:
  All error types in one place. Other packages (catalog, template, motor)
  reuse these sentinels so callers can classify failures uniformly with
  errors.Is.

ERROR CATEGORIES:
  1. Not-found - a referenced record does not exist
  2. Validation - negative quantity/price at a write boundary
  3. Conflict - concurrent writers collided on an invariant

A missing price history row is NOT an error: a part with no price yet is
a valid state and prices at zero. Only missing records (project, estimate,
assembly, part, version, revision) are not-found conditions.
*/
package costing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is the base sentinel for any missing-record condition.
	ErrNotFound = errors.New("record not found")

	// ErrNegativeQuantity is returned when a write supplies a quantity
	// below zero. Rejected before any database mutation.
	ErrNegativeQuantity = errors.New("quantity must not be negative")

	// ErrNegativePrice is returned when a write supplies a price below
	// zero. Rejected before any database mutation.
	ErrNegativePrice = errors.New("price must not be negative")

	// ErrConflict is returned when two concurrent writers collided and a
	// retry did not resolve it. Transient: the caller may try again.
	ErrConflict = errors.New("concurrent modification conflict")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// NotFoundError identifies the missing record by kind and id.
type NotFoundError struct {
	Kind string // "project", "estimate", "assembly", "part", ...
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether err indicates a missing record.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsRetryable reports whether the operation might succeed if retried.
func IsRetryable(err error) bool { return errors.Is(err, ErrConflict) }

// IsValidation reports whether err is a client-input problem.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNegativeQuantity) || errors.Is(err, ErrNegativePrice)
}

// ValidateQuantity rejects negative quantities at the write boundary.
func ValidateQuantity(q decimal.Decimal) error {
	if q.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativeQuantity, q)
	}
	return nil
}

// ValidatePrice rejects negative prices at the write boundary.
func ValidatePrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativePrice, p)
	}
	return nil
}
