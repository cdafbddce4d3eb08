/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Calculator packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Contract errors - A calculator was called with a period it has no table for
  2. Validation errors - User input rejected before any calculation runs
  3. Store errors - History persistence failures

USAGE:
  if errors.Is(err, generic.ErrNoTable) {
      // year outside the registry
  }

SEE ALSO:
  - tables/registry.go: Returns NoTableError
  - payslip/payslip.go: Returns ValidationError
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoTable is returned when no rate table is defined for a period.
	ErrNoTable = errors.New("no rate table for period")

	// ErrInvalidAmount is returned when gross pay is missing, not a number or not positive.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidRate is returned when a flat contribution rate is missing or negative.
	ErrInvalidRate = errors.New("invalid rate")

	// ErrInvalidMonth is returned when a month is outside 1-12.
	ErrInvalidMonth = errors.New("invalid month")

	// ErrInvalidDependents is returned for a negative dependent count.
	ErrInvalidDependents = errors.New("invalid dependents")

	// ErrInvalidRegime is returned for an unknown contribution regime.
	ErrInvalidRegime = errors.New("invalid regime")

	// ErrInvalidTable is returned when a table document is malformed.
	ErrInvalidTable = errors.New("invalid rate table")

	// ErrCalculationNotFound is returned when a stored calculation doesn't exist.
	ErrCalculationNotFound = errors.New("calculation not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TableKind names which registry a lookup went to.
type TableKind string

const (
	TableContribution TableKind = "contribution"
	TableWithholding  TableKind = "withholding"
)

// NoTableError provides details about a failed table lookup.
type NoTableError struct {
	Kind TableKind
	Key  PeriodKey
}

func (e *NoTableError) Error() string {
	return fmt.Sprintf("no %s table for %s", e.Kind, e.Key)
}

func (e *NoTableError) Unwrap() error {
	return ErrNoTable
}

// ValidationError is a user-facing input rejection. Message is shown to the
// user verbatim in place of the report.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidRate) ||
		errors.Is(err, ErrInvalidMonth) ||
		errors.Is(err, ErrInvalidDependents) ||
		errors.Is(err, ErrInvalidRegime) ||
		errors.Is(err, ErrInvalidTable) ||
		errors.Is(err, ErrNoTable)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCalculationNotFound)
}
