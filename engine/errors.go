/*
errors.go - Centralized error types for the convocation engine

PURPOSE:
  All engine error types in one place for consistency and discoverability.
  The API layer maps these onto HTTP statuses; nothing in the engine knows
  about HTTP.

ERROR CATEGORIES:
  1. Not-found errors - Unknown convocation/employee/penalty/area ids
  2. Validation errors - Missing or malformed input
  3. Conflict errors - State machine violations, duplicate names
  4. NoEligibleEmployees - Roster build where every candidate was excluded

USAGE:
  Callers classify with errors.Is or the helpers below:

    if engine.IsNotFound(err) { ... 404 ... }

  Structured errors carry the detail a client needs to explain the
  rejection (offending employee, blocking window, current status).

SEE ALSO:
  - roster.go: Returns NoEligibleEmployeesError
  - lifecycle.go: Returns InvalidStateTransitionError
  - api/handlers.go: HTTP status mapping
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
	// ErrValidation is returned when required input is missing or malformed.
	ErrValidation = errors.New("validation failed")

	// ErrConvocationNotFound is returned when a referenced convocation
	// doesn't exist. Fails the whole batch in attendance updates.
	ErrConvocationNotFound = errors.New("convocation not found")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrPenaltyNotFound is returned when a referenced penalty doesn't exist.
	ErrPenaltyNotFound = errors.New("penalty not found")

	// ErrAreaNotFound is returned when a referenced area doesn't exist.
	ErrAreaNotFound = errors.New("area not found")

	// ErrUserNotFound is returned when a referenced user doesn't exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrNoEligibleEmployees is returned when every requested employee was
	// excluded from a roster. Always wrapped by NoEligibleEmployeesError.
	ErrNoEligibleEmployees = errors.New("no eligible employees")

	// ErrInvalidStateTransition is returned for send-twice and
	// delete-after-send attempts.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrDuplicateName is returned when an area name collides after
	// normalization.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrDuplicateNationalID is returned when an employee national id or
	// email collides with an existing record.
	ErrDuplicateNationalID = errors.New("duplicate national id or email")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// RejectReason names why a candidate employee was excluded from a roster.
// A single rejection can carry several reasons; "inactive" and "penalized"
// are independent and are both reported when they overlap.
type RejectReason string

const (
	RejectNotFound  RejectReason = "not_found"
	RejectInactive  RejectReason = "inactive"
	RejectPenalized RejectReason = "penalized"
)

// Rejection describes one excluded employee. Window is set only when the
// exclusion involves a blocking penalty.
type Rejection struct {
	EmployeeID EmployeeID     `json:"employee_id"`
	Name       string         `json:"name,omitempty"`
	Reasons    []RejectReason `json:"reasons"`
	Window     *Window        `json:"penalty_window,omitempty"`
}

// NoEligibleEmployeesError reports a roster build where every candidate was
// excluded. It carries one rejection per requested employee so the caller
// can explain each exclusion, never a bare boolean.
type NoEligibleEmployeesError struct {
	Rejected []Rejection
}

func (e *NoEligibleEmployeesError) Error() string {
	return fmt.Sprintf("no eligible employees: all %d candidates excluded", len(e.Rejected))
}

func (e *NoEligibleEmployeesError) Unwrap() error { return ErrNoEligibleEmployees }

// InvalidStateTransitionError reports a lifecycle action attempted in the
// wrong state (e.g., sending a SENT convocation, deleting after send).
type InvalidStateTransitionError struct {
	ConvocationID ConvocationID
	Current       ConvocationStatus
	Action        string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s convocation %s in status %s", e.Action, e.ConvocationID, e.Current)
}

func (e *InvalidStateTransitionError) Unwrap() error { return ErrInvalidStateTransition }

// FieldError reports a single invalid or missing request field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrConvocationNotFound) ||
		errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrPenaltyNotFound) ||
		errors.Is(err, ErrAreaNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNoEligibleEmployees)
}

// IsConflict returns true if the error should map to a conflict response.
func IsConflict(err error) bool {
	return errors.Is(err, ErrInvalidStateTransition) ||
		errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrDuplicateNationalID)
}
