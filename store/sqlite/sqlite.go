/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements engine.Store plus the wider persistence surface the API layer
  needs (areas, users, roster detail joins, dashboard counts). The same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  areas:          Organizational units, unique normalized name
  employees:      Worker records, unique national id
  users:          Authenticated operators
  convocations:   Call-ups with DRAFT/SENT status
  roster_entries: Convocation<->employee, PK (convocation_id, employee_id)
  penalties:      The penalty ledger; rows are appended and edited,
                  never deleted

UPSERT-BY-COMPOSITE-KEY:
  roster_entries uses ON CONFLICT on its primary key so concurrent writers
  racing on the same (convocation, employee) resolve last-write-wins on
  status and comment.

AUTO-PENALTY IDEMPOTENCY:
  idx_penalties_auto_event uniquely constrains (employee_id, reference_id)
  for AUTO rows, backing the engine's HasAutoPenalty check at the schema
  level: one absence event can never produce two penalties even under
  racing requests.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency.

USAGE:
  store, err := sqlite.New("./data/convoca.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
  eng := engine.New(store)

SEE ALSO:
  - engine/store.go: Interface definitions
  - engine/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/convoca/convocation-engine/engine"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Areas (unique normalized names)
	CREATE TABLE IF NOT EXISTS areas (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL
	);

	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		national_id TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		area_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_area ON employees(area_id);
	CREATE INDEX IF NOT EXISTS idx_employees_status ON employees(status);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_employees_email
		ON employees(email) WHERE email <> '';

	-- Users (authenticated operators)
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	-- Convocations
	CREATE TABLE IF NOT EXISTS convocations (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		work_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'DRAFT',
		created_by TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_convocations_work_date
		ON convocations(work_date);
	CREATE INDEX IF NOT EXISTS idx_convocations_status
		ON convocations(status);

	-- Roster entries (upsert by composite key, last write wins)
	CREATE TABLE IF NOT EXISTS roster_entries (
		convocation_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'CONVOKED',
		comment TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL,
		PRIMARY KEY (convocation_id, employee_id)
	);

	CREATE INDEX IF NOT EXISTS idx_roster_employee
		ON roster_entries(employee_id);

	-- Penalties (the ledger; edited, never deleted)
	CREATE TABLE IF NOT EXISTS penalties (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		reason TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		origin TEXT NOT NULL,
		reference_id TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_penalties_employee
		ON penalties(employee_id);
	CREATE INDEX IF NOT EXISTS idx_penalties_window
		ON penalties(active, start_date, end_date);

	-- CRITICAL: one AUTO penalty per absence event. The engine checks
	-- before insert; this index makes the invariant hold under races too.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_penalties_auto_event
		ON penalties(employee_id, reference_id)
		WHERE origin = 'AUTO' AND reference_id <> '';
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// AREAS
// =============================================================================

// SaveArea inserts an area. The name must already be normalized.
func (s *Store) SaveArea(ctx context.Context, a engine.Area) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO areas (id, name, created_at) VALUES (?, ?, ?)`,
		a.ID, a.Name, formatTime(a.CreatedAt))
	if err != nil {
		if isUniqueConstraintError(err) {
			return engine.ErrDuplicateName
		}
		return fmt.Errorf("failed to save area: %w", err)
	}
	return nil
}

// UpdateArea renames an area.
func (s *Store) UpdateArea(ctx context.Context, a engine.Area) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE areas SET name = ? WHERE id = ?`, a.Name, a.ID)
	if err != nil {
		if isUniqueConstraintError(err) {
			return engine.ErrDuplicateName
		}
		return fmt.Errorf("failed to update area: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.ErrAreaNotFound
	}
	return nil
}

// GetArea returns the area or nil when unknown.
func (s *Store) GetArea(ctx context.Context, id engine.AreaID) (*engine.Area, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var a engine.Area
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM areas WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get area: %w", err)
	}
	a.CreatedAt = parseTime(createdAt)
	return &a, nil
}

// ListAreas returns all areas ordered by creation.
func (s *Store) ListAreas(ctx context.Context) ([]engine.Area, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM areas ORDER BY created_at ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list areas: %w", err)
	}
	defer rows.Close()

	var out []engine.Area
	for rows.Next() {
		var a engine.Area
		var createdAt string
		if err := rows.Scan(&a.ID, &a.Name, &createdAt); err != nil {
			return nil, err
		}
		a.CreatedAt = parseTime(createdAt)
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteArea removes an area.
func (s *Store) DeleteArea(ctx context.Context, id engine.AreaID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM areas WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete area: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.ErrAreaNotFound
	}
	return nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// SaveEmployee inserts or fully overwrites an employee record.
func (s *Store) SaveEmployee(ctx context.Context, e engine.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees
		(id, national_id, first_name, last_name, email, phone, address, area_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			national_id = excluded.national_id,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email,
			phone = excluded.phone,
			address = excluded.address,
			area_id = excluded.area_id,
			status = excluded.status`,
		e.ID, e.NationalID, e.FirstName, e.LastName, e.Email, e.Phone,
		e.Address, e.AreaID, e.Status, formatTime(e.CreatedAt))
	if err != nil {
		if isUniqueConstraintError(err) {
			return engine.ErrDuplicateNationalID
		}
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// SetEmployeeStatus flips only the status column (soft delete path).
func (s *Store) SetEmployeeStatus(ctx context.Context, id engine.EmployeeID, status engine.EmployeeStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE employees SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to set employee status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.ErrEmployeeNotFound
	}
	return nil
}

// GetEmployee returns the employee or nil when unknown.
func (s *Store) GetEmployee(ctx context.Context, id engine.EmployeeID) (*engine.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, national_id, first_name, last_name, email, phone, address, area_id, status, created_at
		FROM employees WHERE id = ?`, id)

	e, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

// ListEmployees returns employees matching the filter. Listings hide
// INACTIVE rows unless the filter says otherwise.
func (s *Store) ListEmployees(ctx context.Context, f engine.EmployeeFilter) ([]engine.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, national_id, first_name, last_name, email, phone, address, area_id, status, created_at
		FROM employees WHERE 1=1`
	var args []any

	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	} else if !f.IncludeInactive {
		query += ` AND status <> ?`
		args = append(args, engine.EmployeeInactive)
	}
	if f.AreaID != "" {
		query += ` AND area_id = ?`
		args = append(args, f.AreaID)
	}
	if f.Query != "" {
		query += ` AND (first_name LIKE ? COLLATE NOCASE
			OR last_name LIKE ? COLLATE NOCASE
			OR national_id LIKE ?)`
		like := "%" + f.Query + "%"
		args = append(args, like, like, like)
	}
	query += ` ORDER BY created_at ASC, last_name ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var out []engine.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// =============================================================================
// USERS
// =============================================================================

// SaveUser inserts or overwrites a user.
func (s *Store) SaveUser(ctx context.Context, u engine.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, role, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			email = excluded.email,
			password_hash = excluded.password_hash,
			role = excluded.role,
			active = excluded.active`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.Active, formatTime(u.CreatedAt))
	if err != nil {
		if isUniqueConstraintError(err) {
			return engine.ErrDuplicateName
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetUser returns the user or nil when unknown.
func (s *Store) GetUser(ctx context.Context, id engine.UserID) (*engine.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryUser(ctx, `WHERE id = ?`, id)
}

// GetUserByUsername returns the user or nil when unknown.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*engine.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryUser(ctx, `WHERE username = ?`, username)
}

func (s *Store) queryUser(ctx context.Context, where string, arg any) (*engine.User, error) {
	var u engine.User
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, role, active, created_at
		FROM users `+where, arg,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Active, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}

// ListUsers returns all users ordered by creation.
func (s *Store) ListUsers(ctx context.Context) ([]engine.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, email, password_hash, role, active, created_at
		FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var out []engine.User
	for rows.Next() {
		var u engine.User
		var createdAt string
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Active, &createdAt); err != nil {
			return nil, err
		}
		u.CreatedAt = parseTime(createdAt)
		out = append(out, u)
	}
	return out, rows.Err()
}

// =============================================================================
// PENALTIES (engine.PenaltyStore)
// =============================================================================

// SavePenalty appends a penalty row.
func (s *Store) SavePenalty(ctx context.Context, p engine.Penalty) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO penalties
		(id, employee_id, reason, start_date, end_date, active, origin, reference_id, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.EmployeeID, p.Reason, formatTime(p.Start), formatTime(p.End),
		p.Active, p.Origin, p.ReferenceID, p.CreatedBy, formatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save penalty: %w", err)
	}
	return nil
}

// UpdatePenalty overwrites the editable fields of a penalty.
func (s *Store) UpdatePenalty(ctx context.Context, p engine.Penalty) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE penalties SET reason = ?, start_date = ?, end_date = ?, active = ?
		WHERE id = ?`,
		p.Reason, formatTime(p.Start), formatTime(p.End), p.Active, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update penalty: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.ErrPenaltyNotFound
	}
	return nil
}

// GetPenalty returns the penalty or nil when unknown.
func (s *Store) GetPenalty(ctx context.Context, id engine.PenaltyID) (*engine.Penalty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, reason, start_date, end_date, active, origin, reference_id, created_by, created_at
		FROM penalties WHERE id = ?`, id)

	p, err := scanPenalty(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get penalty: %w", err)
	}
	return p, nil
}

// ListPenalties returns penalties matching the filter, newest window first.
func (s *Store) ListPenalties(ctx context.Context, f engine.PenaltyFilter) ([]engine.Penalty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, reason, start_date, end_date, active, origin, reference_id, created_by, created_at
		FROM penalties WHERE 1=1`
	var args []any
	if f.EmployeeID != "" {
		query += ` AND employee_id = ?`
		args = append(args, f.EmployeeID)
	}
	if f.ActiveOnly {
		query += ` AND active = TRUE`
	}
	query += ` ORDER BY start_date DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list penalties: %w", err)
	}
	defer rows.Close()

	var out []engine.Penalty
	for rows.Next() {
		p, err := scanPenalty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// HasAutoPenalty reports whether an AUTO penalty exists for the
// (employee, reference) pair.
func (s *Store) HasAutoPenalty(ctx context.Context, employeeID engine.EmployeeID, referenceID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM penalties
		WHERE employee_id = ? AND reference_id = ? AND origin = ?`,
		employeeID, referenceID, engine.OriginAuto,
	).Scan(&count)
	return count > 0, err
}

// =============================================================================
// CONVOCATIONS AND ROSTER (engine.ConvocationStore)
// =============================================================================

// SaveConvocation persists a new convocation.
func (s *Store) SaveConvocation(ctx context.Context, c engine.Convocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO convocations (id, title, description, work_date, status, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.Description, formatTime(c.WorkDate), c.Status, c.CreatedBy, formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save convocation: %w", err)
	}
	return nil
}

// GetConvocation returns the convocation or nil when unknown.
func (s *Store) GetConvocation(ctx context.Context, id engine.ConvocationID) (*engine.Convocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c engine.Convocation
	var workDate, createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, work_date, status, created_by, created_at
		FROM convocations WHERE id = ?`, id,
	).Scan(&c.ID, &c.Title, &c.Description, &workDate, &c.Status, &c.CreatedBy, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get convocation: %w", err)
	}
	c.WorkDate = parseTime(workDate)
	c.CreatedAt = parseTime(createdAt)
	return &c, nil
}

// ListConvocations returns all convocations, newest first.
func (s *Store) ListConvocations(ctx context.Context) ([]engine.Convocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, work_date, status, created_by, created_at
		FROM convocations ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list convocations: %w", err)
	}
	defer rows.Close()

	var out []engine.Convocation
	for rows.Next() {
		var c engine.Convocation
		var workDate, createdAt string
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &workDate, &c.Status, &c.CreatedBy, &createdAt); err != nil {
			return nil, err
		}
		c.WorkDate = parseTime(workDate)
		c.CreatedAt = parseTime(createdAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetConvocationStatus updates only the lifecycle status.
func (s *Store) SetConvocationStatus(ctx context.Context, id engine.ConvocationID, status engine.ConvocationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE convocations SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to set convocation status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.ErrConvocationNotFound
	}
	return nil
}

// DeleteConvocation removes the convocation and cascades its roster
// atomically.
func (s *Store) DeleteConvocation(ctx context.Context, id engine.ConvocationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM roster_entries WHERE convocation_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete roster: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM convocations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete convocation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.ErrConvocationNotFound
	}
	return tx.Commit()
}

// UpsertRosterEntry creates or overwrites the entry keyed by
// (convocation, employee). Last write wins on status and comment.
func (s *Store) UpsertRosterEntry(ctx context.Context, e engine.RosterEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO roster_entries (convocation_id, employee_id, status, comment, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(convocation_id, employee_id) DO UPDATE SET
			status = excluded.status,
			comment = excluded.comment,
			updated_at = excluded.updated_at`,
		e.ConvocationID, e.EmployeeID, e.Status, e.Comment, formatTime(e.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert roster entry: %w", err)
	}
	return nil
}

// ListRoster returns the roster entries for a convocation.
func (s *Store) ListRoster(ctx context.Context, id engine.ConvocationID) ([]engine.RosterEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT convocation_id, employee_id, status, comment, updated_at
		FROM roster_entries WHERE convocation_id = ?
		ORDER BY employee_id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster: %w", err)
	}
	defer rows.Close()

	var out []engine.RosterEntry
	for rows.Next() {
		var e engine.RosterEntry
		var updatedAt string
		if err := rows.Scan(&e.ConvocationID, &e.EmployeeID, &e.Status, &e.Comment, &updatedAt); err != nil {
			return nil, err
		}
		e.UpdatedAt = parseTime(updatedAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// RosterDetail is a roster entry joined with its employee and area, the
// shape listings and reports need.
type RosterDetail struct {
	Entry    engine.RosterEntry
	Employee engine.Employee
	AreaName string
}

// ListRosterDetail returns the roster of a convocation with employee and
// area data joined in.
func (s *Store) ListRosterDetail(ctx context.Context, id engine.ConvocationID) ([]RosterDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.convocation_id, r.employee_id, r.status, r.comment, r.updated_at,
		       e.id, e.national_id, e.first_name, e.last_name, e.email, e.phone,
		       e.address, e.area_id, e.status, e.created_at,
		       COALESCE(a.name, '')
		FROM roster_entries r
		JOIN employees e ON e.id = r.employee_id
		LEFT JOIN areas a ON a.id = e.area_id
		WHERE r.convocation_id = ?
		ORDER BY e.last_name ASC, e.first_name ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster detail: %w", err)
	}
	defer rows.Close()

	var out []RosterDetail
	for rows.Next() {
		var d RosterDetail
		var entryUpdated, empCreated string
		if err := rows.Scan(
			&d.Entry.ConvocationID, &d.Entry.EmployeeID, &d.Entry.Status, &d.Entry.Comment, &entryUpdated,
			&d.Employee.ID, &d.Employee.NationalID, &d.Employee.FirstName, &d.Employee.LastName,
			&d.Employee.Email, &d.Employee.Phone, &d.Employee.Address, &d.Employee.AreaID,
			&d.Employee.Status, &empCreated, &d.AreaName,
		); err != nil {
			return nil, err
		}
		d.Entry.UpdatedAt = parseTime(entryUpdated)
		d.Employee.CreatedAt = parseTime(empCreated)
		out = append(out, d)
	}
	return out, rows.Err()
}

// =============================================================================
// DASHBOARD COUNTS
// =============================================================================

// DashboardStats is the aggregate snapshot the dashboard surface shows.
type DashboardStats struct {
	EmployeesActive    int
	EmployeesInactive  int
	ConvocationsOpen   int
	ConvocationsClosed int
	PenaltiesActive    int
	PenaltiesTotal     int
	AreasTotal         int
}

// Stats computes the dashboard counters. "Open" convocations have a work
// date of today or later; "closed" ones are in the past.
func (s *Store) Stats(ctx context.Context, today time.Time) (*DashboardStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st DashboardStats
	day := formatTime(startOfDay(today))

	counts := []struct {
		dst   *int
		query string
		args  []any
	}{
		{&st.EmployeesActive, `SELECT COUNT(*) FROM employees WHERE status = ?`, []any{engine.EmployeeActive}},
		{&st.EmployeesInactive, `SELECT COUNT(*) FROM employees WHERE status = ?`, []any{engine.EmployeeInactive}},
		{&st.ConvocationsOpen, `SELECT COUNT(*) FROM convocations WHERE work_date >= ?`, []any{day}},
		{&st.ConvocationsClosed, `SELECT COUNT(*) FROM convocations WHERE work_date < ?`, []any{day}},
		{&st.PenaltiesActive, `SELECT COUNT(*) FROM penalties WHERE active = TRUE`, nil},
		{&st.PenaltiesTotal, `SELECT COUNT(*) FROM penalties`, nil},
		{&st.AreasTotal, `SELECT COUNT(*) FROM areas`, nil},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("failed to compute stats: %w", err)
		}
	}
	return &st, nil
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(r rowScanner) (*engine.Employee, error) {
	var e engine.Employee
	var createdAt string
	err := r.Scan(&e.ID, &e.NationalID, &e.FirstName, &e.LastName, &e.Email,
		&e.Phone, &e.Address, &e.AreaID, &e.Status, &createdAt)
	if err != nil {
		return nil, err
	}
	e.CreatedAt = parseTime(createdAt)
	return &e, nil
}

func scanPenalty(r rowScanner) (*engine.Penalty, error) {
	var p engine.Penalty
	var start, end, createdAt string
	err := r.Scan(&p.ID, &p.EmployeeID, &p.Reason, &start, &end, &p.Active,
		&p.Origin, &p.ReferenceID, &p.CreatedBy, &createdAt)
	if err != nil {
		return nil, err
	}
	p.Start = parseTime(start)
	p.End = parseTime(end)
	p.CreatedAt = parseTime(createdAt)
	return &p, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
