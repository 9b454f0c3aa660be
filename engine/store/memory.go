// Package store provides an in-memory engine.Store implementation for
// tests and development.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/convoca/convocation-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	employees    map[engine.EmployeeID]engine.Employee
	penalties    map[engine.PenaltyID]engine.Penalty
	convocations map[engine.ConvocationID]engine.Convocation
	roster       map[rosterKey]engine.RosterEntry
	order        []engine.PenaltyID // insertion order for stable listings
}

type rosterKey struct {
	ConvocationID engine.ConvocationID
	EmployeeID    engine.EmployeeID
}

func NewMemory() *Memory {
	return &Memory{
		employees:    make(map[engine.EmployeeID]engine.Employee),
		penalties:    make(map[engine.PenaltyID]engine.Penalty),
		convocations: make(map[engine.ConvocationID]engine.Convocation),
		roster:       make(map[rosterKey]engine.RosterEntry),
	}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// SaveEmployee is a test helper; the engine itself never writes employees.
func (m *Memory) SaveEmployee(_ context.Context, e engine.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id engine.EmployeeID) (*engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.employees[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (m *Memory) ListEmployees(_ context.Context, f engine.EmployeeFilter) ([]engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []engine.Employee
	for _, e := range m.employees {
		if !matchesFilter(e, f) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func matchesFilter(e engine.Employee, f engine.EmployeeFilter) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.Status == "" && !f.IncludeInactive && e.Status == engine.EmployeeInactive {
		return false
	}
	if f.AreaID != "" && e.AreaID != f.AreaID {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		hay := strings.ToLower(e.FirstName + " " + e.LastName + " " + e.NationalID)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

// =============================================================================
// PENALTIES
// =============================================================================

func (m *Memory) SavePenalty(_ context.Context, p engine.Penalty) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.penalties[p.ID] = p
	m.order = append(m.order, p.ID)
	return nil
}

func (m *Memory) UpdatePenalty(_ context.Context, p engine.Penalty) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.penalties[p.ID]; !ok {
		return engine.ErrPenaltyNotFound
	}
	m.penalties[p.ID] = p
	return nil
}

func (m *Memory) GetPenalty(_ context.Context, id engine.PenaltyID) (*engine.Penalty, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.penalties[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (m *Memory) ListPenalties(_ context.Context, f engine.PenaltyFilter) ([]engine.Penalty, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []engine.Penalty
	for _, id := range m.order {
		p := m.penalties[id]
		if f.EmployeeID != "" && p.EmployeeID != f.EmployeeID {
			continue
		}
		if f.ActiveOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	// Newest window first, matching the SQLite ordering.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.After(out[j].Start) })
	return out, nil
}

func (m *Memory) HasAutoPenalty(_ context.Context, employeeID engine.EmployeeID, referenceID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.penalties {
		if p.Origin == engine.OriginAuto && p.EmployeeID == employeeID && p.ReferenceID == referenceID {
			return true, nil
		}
	}
	return false, nil
}

// =============================================================================
// CONVOCATIONS AND ROSTER
// =============================================================================

func (m *Memory) SaveConvocation(_ context.Context, c engine.Convocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.convocations[c.ID] = c
	return nil
}

func (m *Memory) GetConvocation(_ context.Context, id engine.ConvocationID) (*engine.Convocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.convocations[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (m *Memory) ListConvocations(_ context.Context) ([]engine.Convocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.Convocation, 0, len(m.convocations))
	for _, c := range m.convocations {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) SetConvocationStatus(_ context.Context, id engine.ConvocationID, s engine.ConvocationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.convocations[id]
	if !ok {
		return engine.ErrConvocationNotFound
	}
	c.Status = s
	m.convocations[id] = c
	return nil
}

func (m *Memory) DeleteConvocation(_ context.Context, id engine.ConvocationID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.convocations[id]; !ok {
		return engine.ErrConvocationNotFound
	}
	delete(m.convocations, id)
	for k := range m.roster {
		if k.ConvocationID == id {
			delete(m.roster, k)
		}
	}
	return nil
}

// UpsertRosterEntry overwrites on key collision: last write wins on status
// and comment.
func (m *Memory) UpsertRosterEntry(_ context.Context, e engine.RosterEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roster[rosterKey{ConvocationID: e.ConvocationID, EmployeeID: e.EmployeeID}] = e
	return nil
}

func (m *Memory) ListRoster(_ context.Context, id engine.ConvocationID) ([]engine.RosterEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.RosterEntry
	for k, e := range m.roster {
		if k.ConvocationID == id {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}
