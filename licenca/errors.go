/*
errors.go - Centralized error types for the licença engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Consumers should wrap these errors with additional context.

ERROR CATEGORIES:
  1. Lookup errors - Unknown employee, unknown grouping field
  2. Caller misuse - Invalid arguments from the presentation layer
  3. Store errors - Persistence failures for override rules

Input malformation is deliberately NOT an error category: unparsable dates
and numbers degrade to nil/zero with diagnostics on the record (see
RawLeaveRecord.Flags), because a single bad row must never fail a load.
*/
package licenca

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when a matrícula has no loaded records.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrInvalidGroupField is returned for an unknown GroupBy field. This is
	// caller misuse, not bad data, so it fails loudly.
	ErrInvalidGroupField = errors.New("invalid group-by field")

	// ErrEmptyRuleKey is returned when a custom lotação rule has a blank key.
	ErrEmptyRuleKey = errors.New("custom rule key must not be empty")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError reports a lookup miss for a specific matrícula.
type NotFoundError struct {
	Matricula Matricula
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("employee not found: %s", e.Matricula)
}

func (e *NotFoundError) Unwrap() error { return ErrEmployeeNotFound }

// GroupFieldError reports an unsupported GroupBy field and lists the valid ones.
type GroupFieldError struct {
	Field string
	Valid []string
}

func (e *GroupFieldError) Error() string {
	return fmt.Sprintf("invalid group-by field %q (valid: %v)", e.Field, e.Valid)
}

func (e *GroupFieldError) Unwrap() error { return ErrInvalidGroupField }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidGroupField) ||
		errors.Is(err, ErrEmptyRuleKey) ||
		errors.Is(err, ErrInvalidPeriod)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound)
}
