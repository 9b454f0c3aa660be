/*
Package engine provides the convocation eligibility and penalty core.

PURPOSE:
  This package contains the domain types and algorithms for coordinating
  periodic worker call-ups ("convocations"), tracking attendance, and
  applying no-show penalties that exclude workers from future call-ups
  for a fixed window.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee: A worker that can be convoked (owned by the HR surface)
  - Penalty: A time-bounded exclusion window on an employee
  - Convocation: A call-up with a work date and a DRAFT -> SENT lifecycle
  - RosterEntry: The convocation<->employee association with attendance status
  - Window: An inclusive [start, end] date range

DESIGN PRINCIPLES:
  1. One rule, one place: eligibility is decided only by the evaluator in
     eligibility.go; penalties are written only through roster.go,
     attendance.go and penalty.go.
  2. Closed enums: attendance status is an enumerated type; legacy wire
     literals are normalized once at the boundary, never compared inline.
  3. Explicit identity: every mutation carries the acting user; a named
     system identity replaces hard-coded sentinels.

SEE ALSO:
  - eligibility.go: The penalty-window eligibility evaluator
  - roster.go: Roster building at convocation creation
  - attendance.go: Attendance updates and the auto-penalty transition
  - lifecycle.go: Send and delete state machine
*/
package engine

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type AreaID string
type EmployeeID string
type ConvocationID string
type PenaltyID string
type UserID string

// SystemUser is the fallback actor for mutations that arrive without an
// authenticated caller (e.g., internal jobs). Stamped on CreatedBy fields.
const SystemUser UserID = "system"

// =============================================================================
// STATUS ENUMS
// =============================================================================

type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "ACTIVE"
	EmployeeInactive EmployeeStatus = "INACTIVE"
)

type ConvocationStatus string

const (
	ConvocationDraft ConvocationStatus = "DRAFT"
	ConvocationSent  ConvocationStatus = "SENT"
)

type AttendanceStatus string

const (
	AttendanceConvoked  AttendanceStatus = "CONVOKED"  // initial roster state
	AttendanceConfirmed AttendanceStatus = "CONFIRMED" // employee acknowledged
	AttendanceAttended  AttendanceStatus = "ATTENDED"
	AttendanceAbsent    AttendanceStatus = "ABSENT" // triggers auto-penalty
	AttendanceJustified AttendanceStatus = "JUSTIFIED"
)

// NormalizeAttendanceStatus maps a wire literal to the closed enum.
// Legacy spellings from the previous system ("NO_ASISTIO", "FALTÓ",
// "ASISTIÓ", ...) are accepted and folded into their canonical values so the
// engine never string-matches variants internally.
func NormalizeAttendanceStatus(raw string) (AttendanceStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "CONVOKED", "CONVOCADO":
		return AttendanceConvoked, nil
	case "CONFIRMED", "CONFIRMADO":
		return AttendanceConfirmed, nil
	case "ATTENDED", "ASISTIO", "ASISTIÓ":
		return AttendanceAttended, nil
	case "ABSENT", "NO_ASISTIO", "FALTO", "FALTÓ":
		return AttendanceAbsent, nil
	case "JUSTIFIED", "JUSTIFICADO":
		return AttendanceJustified, nil
	}
	return "", fmt.Errorf("%w: unknown attendance status %q", ErrValidation, raw)
}

// IsNoShow reports whether the status denotes an unexcused absence.
func (s AttendanceStatus) IsNoShow() bool { return s == AttendanceAbsent }

type PenaltyOrigin string

const (
	OriginManual PenaltyOrigin = "MANUAL"
	OriginAuto   PenaltyOrigin = "AUTO"
)

// =============================================================================
// WINDOW - Inclusive [start, end] date range
// =============================================================================

// Window is an inclusive date range. Used for penalty exclusion windows.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains returns true if t is within [Start, End].
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Valid returns true if End is not before Start.
func (w Window) Valid() bool { return !w.End.Before(w.Start) }

func (w Window) String() string {
	return "[" + w.Start.Format("2006-01-02") + ", " + w.End.Format("2006-01-02") + "]"
}

// =============================================================================
// ENTITIES
// =============================================================================

// Area is an organizational unit employees belong to. Names are unique
// after normalization (trimmed, collapsed whitespace, uppercased).
type Area struct {
	ID        AreaID
	Name      string
	CreatedAt time.Time
}

// NormalizeAreaName folds an area name to its canonical form so duplicate
// detection is spelling-insensitive.
func NormalizeAreaName(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}

// Employee is a worker eligible for convocation. Owned by the HR surface;
// the engine references it but never creates or edits it.
type Employee struct {
	ID         EmployeeID
	NationalID string // unique national-id string (cédula)
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	AreaID     AreaID
	Status     EmployeeStatus
	CreatedAt  time.Time
}

func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// Penalty is a time-bounded exclusion on an employee. Created manually by
// an administrator or automatically by the no-show transition. Only the
// Active flag and window fields are ever edited; rows are never deleted.
type Penalty struct {
	ID         PenaltyID
	EmployeeID EmployeeID
	Reason     string
	Start      time.Time
	End        time.Time
	Active     bool
	Origin     PenaltyOrigin
	// ReferenceID links an AUTO penalty to the convocation whose no-show
	// produced it. Together with EmployeeID it forms the natural
	// idempotency key that prevents double-penalizing one absence event.
	ReferenceID string
	CreatedBy   UserID
	CreatedAt   time.Time
}

// Window returns the penalty's exclusion window.
func (p Penalty) Window() Window { return Window{Start: p.Start, End: p.End} }

// Blocks reports whether this penalty excludes the employee at the given
// instant. The Active flag gates the check: an inactive penalty never
// blocks, regardless of its window.
func (p Penalty) Blocks(at time.Time) bool {
	return p.Active && p.Window().Contains(at)
}

// Convocation is a single call-up. Status moves DRAFT -> SENT exactly once;
// deletion is only permitted while DRAFT.
type Convocation struct {
	ID          ConvocationID
	Title       string
	Description string
	WorkDate    time.Time // reference instant for penalty windows
	Status      ConvocationStatus
	CreatedBy   UserID
	CreatedAt   time.Time
}

// RosterEntry associates an employee with a convocation. Created at roster
// build time for each eligible employee, updated by attendance marking,
// and removed only by cascading with its convocation.
type RosterEntry struct {
	ConvocationID ConvocationID
	EmployeeID    EmployeeID
	Status        AttendanceStatus
	Comment       string
	UpdatedAt     time.Time
}

// User is an authenticated operator of the system.
type User struct {
	ID           UserID
	Username     string
	Email        string
	PasswordHash string
	Role         string
	Active       bool
	CreatedAt    time.Time
}

// =============================================================================
// AUTO-PENALTY CONSTANTS
// =============================================================================

const (
	// AutoPenaltyDays is the length of the exclusion window applied to a
	// no-show, counted from the convocation's work date.
	AutoPenaltyDays = 3

	// AutoPenaltyReason is the fixed reason stamped on AUTO penalties.
	AutoPenaltyReason = "unexcused absence"
)

// AutoPenaltyWindow computes the exclusion window for a no-show on the
// given work date: [workDate, workDate + AutoPenaltyDays].
func AutoPenaltyWindow(workDate time.Time) Window {
	return Window{Start: workDate, End: workDate.AddDate(0, 0, AutoPenaltyDays)}
}
