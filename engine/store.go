/*
store.go - Persistence interface between the engine and the database

PURPOSE:
  Defines the storage contract the engine depends on. The engine's only
  shared mutable resource is this store; all invariant checks are
  read-then-write sequences against it. Implementations exist for SQLite
  (store/sqlite) and in-memory (engine/store, tests/dev).

KEY INTERFACES:
  EmployeeStore:    Employee lookup (engine reads, never writes)
  PenaltyStore:     Penalty ledger (append + targeted update, no delete)
  ConvocationStore: Convocations and roster entries (upsert by composite key)
  Store:            Union required by the Engine

UPSERT DISCIPLINE:
  Roster entries are keyed by (convocation, employee). Concurrent writers
  racing on the same key resolve last-write-wins on (status, comment);
  there is no merge.

LEDGER CONTRACT:
  Penalties are never deleted. Corrections flip the Active flag or edit the
  window through UpdatePenalty. Overlapping active windows for one employee
  are permitted; the evaluator treats any one matching window as blocking.

SEE ALSO:
  - store/sqlite/sqlite.go: Production implementation
  - engine/store/memory.go: In-memory implementation for tests
*/
package engine

import "context"

// =============================================================================
// EMPLOYEE STORE - Read-only from the engine's point of view
// =============================================================================

// EmployeeFilter narrows employee listings.
type EmployeeFilter struct {
	// Query matches name or national-id substrings, case-insensitive.
	Query string
	// AreaID restricts to one area when non-empty.
	AreaID AreaID
	// Status restricts to one status when non-empty.
	Status EmployeeStatus
	// IncludeInactive also returns INACTIVE employees. Listings default to
	// hiding them; direct lookups are unaffected.
	IncludeInactive bool
}

type EmployeeStore interface {
	// GetEmployee returns the employee or nil when unknown.
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)

	// ListEmployees returns employees matching the filter, ordered by
	// creation.
	ListEmployees(ctx context.Context, f EmployeeFilter) ([]Employee, error)
}

// =============================================================================
// PENALTY STORE - The penalty ledger
// =============================================================================

// PenaltyFilter narrows penalty listings.
type PenaltyFilter struct {
	EmployeeID EmployeeID // restrict to one employee when non-empty
	ActiveOnly bool       // only rows with the active flag set
}

type PenaltyStore interface {
	// SavePenalty appends a new penalty row.
	SavePenalty(ctx context.Context, p Penalty) error

	// UpdatePenalty overwrites reason, window and active flag of an
	// existing row. Returns ErrPenaltyNotFound for unknown ids.
	UpdatePenalty(ctx context.Context, p Penalty) error

	// GetPenalty returns the penalty or nil when unknown.
	GetPenalty(ctx context.Context, id PenaltyID) (*Penalty, error)

	// ListPenalties returns penalties matching the filter, newest window
	// first.
	ListPenalties(ctx context.Context, f PenaltyFilter) ([]Penalty, error)

	// HasAutoPenalty reports whether an AUTO penalty already exists for
	// the (employee, reference) pair. This is the idempotency check that
	// keeps one absence event from producing two penalties.
	HasAutoPenalty(ctx context.Context, employeeID EmployeeID, referenceID string) (bool, error)
}

// =============================================================================
// CONVOCATION STORE - Convocations and their rosters
// =============================================================================

type ConvocationStore interface {
	// SaveConvocation persists a new convocation.
	SaveConvocation(ctx context.Context, c Convocation) error

	// GetConvocation returns the convocation or nil when unknown.
	GetConvocation(ctx context.Context, id ConvocationID) (*Convocation, error)

	// ListConvocations returns all convocations, newest first.
	ListConvocations(ctx context.Context) ([]Convocation, error)

	// SetConvocationStatus updates only the lifecycle status.
	SetConvocationStatus(ctx context.Context, id ConvocationID, s ConvocationStatus) error

	// DeleteConvocation removes the convocation and cascades its roster
	// entries. Lifecycle guards live in the engine, not here.
	DeleteConvocation(ctx context.Context, id ConvocationID) error

	// UpsertRosterEntry creates or overwrites the entry keyed by
	// (convocation, employee). Last write wins on status and comment.
	UpsertRosterEntry(ctx context.Context, e RosterEntry) error

	// ListRoster returns the roster entries for a convocation.
	ListRoster(ctx context.Context, id ConvocationID) ([]RosterEntry, error)
}

// Store is the full persistence surface the Engine requires.
type Store interface {
	EmployeeStore
	PenaltyStore
	ConvocationStore
}
