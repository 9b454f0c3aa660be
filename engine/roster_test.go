package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/convoca/convocation-engine/engine"
	"github.com/convoca/convocation-engine/engine/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// newTestEngine pins the clock so CreatedAt values are deterministic.
func newTestEngine(mem *store.Memory, opts ...engine.Option) *engine.Engine {
	opts = append([]engine.Option{
		engine.WithClock(func() time.Time { return day(2024, time.June, 1) }),
	}, opts...)
	return engine.New(mem, opts...)
}

func seedEmployee(t *testing.T, mem *store.Memory, id string, status engine.EmployeeStatus) engine.Employee {
	t.Helper()
	emp := engine.Employee{
		ID:         engine.EmployeeID(id),
		NationalID: "nid-" + id,
		FirstName:  "Test",
		LastName:   id,
		Email:      id + "@example.com",
		AreaID:     "area-1",
		Status:     status,
		CreatedAt:  day(2024, time.January, 1),
	}
	if err := mem.SaveEmployee(context.Background(), emp); err != nil {
		t.Fatalf("seed employee %s: %v", id, err)
	}
	return emp
}

func seedPenalty(t *testing.T, mem *store.Memory, p engine.Penalty) {
	t.Helper()
	if err := mem.SavePenalty(context.Background(), p); err != nil {
		t.Fatalf("seed penalty %s: %v", p.ID, err)
	}
}

// =============================================================================
// ROSTER BUILD TESTS
// =============================================================================

func TestBuildRoster_PartitionsEligibleAndPenalized(t *testing.T) {
	// GIVEN: Two active employees, one with a penalty covering the work date
	// WHEN: Building a roster for both
	// THEN: Only the clean one is accepted; the other is rejected with
	//       reason "penalized" and the blocking window
	ctx := context.Background()
	mem := store.NewMemory()
	eng := newTestEngine(mem)

	seedEmployee(t, mem, "emp-clean", engine.EmployeeActive)
	seedEmployee(t, mem, "emp-penalized", engine.EmployeeActive)
	seedPenalty(t, mem, penalty("p1", "emp-penalized",
		day(2024, time.July, 1), day(2024, time.July, 4), true))

	result, err := eng.BuildRoster(ctx, engine.RosterRequest{
		Title:       "July call-up",
		WorkDate:    day(2024, time.July, 2),
		EmployeeIDs: []engine.EmployeeID{"emp-clean", "emp-penalized"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Accepted) != 1 || result.Accepted[0] != "emp-clean" {
		t.Errorf("expected only emp-clean accepted, got %v", result.Accepted)
	}
	if len(result.Rejected) != 1 {
		t.Fatalf("expected one rejection, got %d", len(result.Rejected))
	}
	rej := result.Rejected[0]
	if rej.EmployeeID != "emp-penalized" {
		t.Errorf("unexpected rejected employee: %s", rej.EmployeeID)
	}
	if len(rej.Reasons) != 1 || rej.Reasons[0] != engine.RejectPenalized {
		t.Errorf("expected reason penalized, got %v", rej.Reasons)
	}
	if rej.Window == nil || !rej.Window.Start.Equal(day(2024, time.July, 1)) {
		t.Errorf("expected blocking window on rejection, got %v", rej.Window)
	}
	if result.Convocation.Status != engine.ConvocationDraft {
		t.Errorf("new convocation should be DRAFT, got %s", result.Convocation.Status)
	}
}

func TestBuildRoster_NoRosterEntryForRejected(t *testing.T) {
	// Invariant: roster entries exist only for accepted employees.
	ctx := context.Background()
	mem := store.NewMemory()
	eng := newTestEngine(mem)

	seedEmployee(t, mem, "emp-ok", engine.EmployeeActive)
	seedEmployee(t, mem, "emp-inactive", engine.EmployeeInactive)

	result, err := eng.BuildRoster(ctx, engine.RosterRequest{
		Title:       "Shift",
		WorkDate:    day(2024, time.July, 2),
		EmployeeIDs: []engine.EmployeeID{"emp-ok", "emp-inactive"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	roster, err := mem.ListRoster(ctx, result.Convocation.ID)
	if err != nil {
		t.Fatalf("list roster: %v", err)
	}
	if len(roster) != 1 {
		t.Fatalf("expected one roster entry, got %d", len(roster))
	}
	if roster[0].EmployeeID != "emp-ok" {
		t.Errorf("unexpected roster member: %s", roster[0].EmployeeID)
	}
	if roster[0].Status != engine.AttendanceConvoked {
		t.Errorf("initial roster status should be CONVOKED, got %s", roster[0].Status)
	}
}

func TestBuildRoster_AllExcluded_NoEligibleEmployeesError(t *testing.T) {
	// GIVEN: Every candidate is penalized, inactive, or unknown
	// THEN: NoEligibleEmployeesError explains each one; nothing is persisted
	ctx := context.Background()
	mem := store.NewMemory()
	eng := newTestEngine(mem)

	seedEmployee(t, mem, "emp-penalized", engine.EmployeeActive)
	seedEmployee(t, mem, "emp-inactive", engine.EmployeeInactive)
	seedPenalty(t, mem, penalty("p1", "emp-penalized",
		day(2024, time.July, 1), day(2024, time.July, 4), true))

	_, err := eng.BuildRoster(ctx, engine.RosterRequest{
		Title:       "Doomed",
		WorkDate:    day(2024, time.July, 2),
		EmployeeIDs: []engine.EmployeeID{"emp-penalized", "emp-inactive", "emp-ghost"},
	})

	var noEligible *engine.NoEligibleEmployeesError
	if !errors.As(err, &noEligible) {
		t.Fatalf("expected NoEligibleEmployeesError, got %v", err)
	}
	if !errors.Is(err, engine.ErrNoEligibleEmployees) {
		t.Error("error should unwrap to ErrNoEligibleEmployees")
	}
	if len(noEligible.Rejected) != 3 {
		t.Fatalf("expected 3 rejections, got %d", len(noEligible.Rejected))
	}

	reasons := make(map[engine.EmployeeID][]engine.RejectReason)
	for _, r := range noEligible.Rejected {
		reasons[r.EmployeeID] = r.Reasons
	}
	if reasons["emp-penalized"][0] != engine.RejectPenalized {
		t.Errorf("emp-penalized: %v", reasons["emp-penalized"])
	}
	if reasons["emp-inactive"][0] != engine.RejectInactive {
		t.Errorf("emp-inactive: %v", reasons["emp-inactive"])
	}
	if reasons["emp-ghost"][0] != engine.RejectNotFound {
		t.Errorf("emp-ghost: %v", reasons["emp-ghost"])
	}

	convs, _ := mem.ListConvocations(ctx)
	if len(convs) != 0 {
		t.Errorf("failed build must not persist a convocation, found %d", len(convs))
	}
}

func TestBuildRoster_InactiveAndPenalized_BothReasonsReported(t *testing.T) {
	// Inactive and penalized are independent; overlap reports both.
	ctx := context.Background()
	mem := store.NewMemory()
	eng := newTestEngine(mem)

	seedEmployee(t, mem, "emp-ok", engine.EmployeeActive)
	seedEmployee(t, mem, "emp-both", engine.EmployeeInactive)
	seedPenalty(t, mem, penalty("p1", "emp-both",
		day(2024, time.July, 1), day(2024, time.July, 4), true))

	result, err := eng.BuildRoster(ctx, engine.RosterRequest{
		Title:       "Shift",
		WorkDate:    day(2024, time.July, 2),
		EmployeeIDs: []engine.EmployeeID{"emp-ok", "emp-both"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Rejected) != 1 {
		t.Fatalf("expected one rejection, got %d", len(result.Rejected))
	}

	got := make(map[engine.RejectReason]bool)
	for _, r := range result.Rejected[0].Reasons {
		got[r] = true
	}
	if !got[engine.RejectInactive] || !got[engine.RejectPenalized] {
		t.Errorf("expected both inactive and penalized, got %v", result.Rejected[0].Reasons)
	}
}

func TestBuildRoster_DeduplicatesCandidates(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	eng := newTestEngine(mem)

	seedEmployee(t, mem, "emp-1", engine.EmployeeActive)

	result, err := eng.BuildRoster(ctx, engine.RosterRequest{
		Title:       "Shift",
		WorkDate:    day(2024, time.July, 2),
		EmployeeIDs: []engine.EmployeeID{"emp-1", "emp-1", "emp-1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Accepted) != 1 {
		t.Errorf("expected a single accepted entry, got %d", len(result.Accepted))
	}
	roster, _ := mem.ListRoster(ctx, result.Convocation.ID)
	if len(roster) != 1 {
		t.Errorf("expected a single roster entry, got %d", len(roster))
	}
}

func TestBuildRoster_Validation(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(store.NewMemory())

	cases := []struct {
		name string
		req  engine.RosterRequest
	}{
		{"missing title", engine.RosterRequest{
			WorkDate: day(2024, time.July, 2), EmployeeIDs: []engine.EmployeeID{"e"}}},
		{"missing work date", engine.RosterRequest{
			Title: "x", EmployeeIDs: []engine.EmployeeID{"e"}}},
		{"no candidates", engine.RosterRequest{
			Title: "x", WorkDate: day(2024, time.July, 2)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := eng.BuildRoster(ctx, tc.req)
			if !errors.Is(err, engine.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestBuildRoster_ReferenceDefaultsToWorkDate(t *testing.T) {
	// GIVEN: A penalty covering the work date but not "today" (the pinned
	//        clock is 2024-06-01, outside the window)
	// THEN: The candidate is still rejected; work date is the reference
	ctx := context.Background()
	mem := store.NewMemory()
	eng := newTestEngine(mem)

	seedEmployee(t, mem, "emp-1", engine.EmployeeActive)
	seedPenalty(t, mem, penalty("p1", "emp-1",
		day(2024, time.August, 10), day(2024, time.August, 13), true))

	_, err := eng.BuildRoster(ctx, engine.RosterRequest{
		Title:       "August shift",
		WorkDate:    day(2024, time.August, 12),
		EmployeeIDs: []engine.EmployeeID{"emp-1"},
	})
	if !errors.Is(err, engine.ErrNoEligibleEmployees) {
		t.Fatalf("expected rejection against the work date, got %v", err)
	}
}

func TestBuildRoster_ExplicitReferenceOverridesWorkDate(t *testing.T) {
	// Same penalty, but an explicit reference instant outside the window.
	ctx := context.Background()
	mem := store.NewMemory()
	eng := newTestEngine(mem)

	seedEmployee(t, mem, "emp-1", engine.EmployeeActive)
	seedPenalty(t, mem, penalty("p1", "emp-1",
		day(2024, time.August, 10), day(2024, time.August, 13), true))

	result, err := eng.BuildRoster(ctx, engine.RosterRequest{
		Title:       "August shift",
		WorkDate:    day(2024, time.August, 12),
		ReferenceAt: day(2024, time.August, 20),
		EmployeeIDs: []engine.EmployeeID{"emp-1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Accepted) != 1 {
		t.Errorf("expected acceptance with explicit reference, got %v", result.Rejected)
	}
}

func TestBuildRoster_StampsActorAndSystemFallback(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	eng := newTestEngine(mem)

	seedEmployee(t, mem, "emp-1", engine.EmployeeActive)

	withActor, err := eng.BuildRoster(ctx, engine.RosterRequest{
		Title:       "A",
		WorkDate:    day(2024, time.July, 2),
		EmployeeIDs: []engine.EmployeeID{"emp-1"},
		CreatedBy:   "user-42",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if withActor.Convocation.CreatedBy != "user-42" {
		t.Errorf("expected explicit actor, got %s", withActor.Convocation.CreatedBy)
	}

	withoutActor, err := eng.BuildRoster(ctx, engine.RosterRequest{
		Title:       "B",
		WorkDate:    day(2024, time.July, 3),
		EmployeeIDs: []engine.EmployeeID{"emp-1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if withoutActor.Convocation.CreatedBy != engine.SystemUser {
		t.Errorf("expected system fallback, got %s", withoutActor.Convocation.CreatedBy)
	}
}
