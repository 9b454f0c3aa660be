package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/convoca/convocation-engine/engine"
	"github.com/convoca/convocation-engine/engine/store"
)

// buildDraft creates a convocation with the given roster members and
// returns its id.
func buildDraft(t *testing.T, eng *engine.Engine, workDate time.Time, ids ...engine.EmployeeID) engine.ConvocationID {
	t.Helper()
	result, err := eng.BuildRoster(context.Background(), engine.RosterRequest{
		Title:       "test convocation",
		WorkDate:    workDate,
		EmployeeIDs: ids,
	})
	if err != nil {
		t.Fatalf("build roster: %v", err)
	}
	return result.Convocation.ID
}

// =============================================================================
// NO-SHOW PENALTY TRANSITION TESTS
// =============================================================================

func TestRecordAttendance_AbsentCreatesAutoPenalty(t *testing.T) {
	// GIVEN: A convocation with work date 2024-07-02
	// WHEN: An employee is marked ABSENT
	// THEN: One AUTO penalty appears with window [07-02, 07-05], the fixed
	//       reason, active, and the convocation id as reference
	ctx := context.Background()
	mem := store.NewMemory()
	eng := newTestEngine(mem)

	seedEmployee(t, mem, "emp-1", engine.EmployeeActive)
	workDate := day(2024, time.July, 2)
	convID := buildDraft(t, eng, workDate, "emp-1")

	result, err := eng.RecordAttendance(ctx, convID, []engine.AttendanceUpdate{
		{EmployeeID: "emp-1", Status: engine.AttendanceAbsent},
	}, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Applied != 1 || result.Failed != 0 {
		t.Fatalf("expected 1 applied / 0 failed, got %d/%d", result.Applied, result.Failed)
	}
	if !result.Items[0].Penalized {
		t.Error("item should report the penalty it created")
	}

	penalties, _ := mem.ListPenalties(ctx, engine.PenaltyFilter{EmployeeID: "emp-1"})
	if len(penalties) != 1 {
		t.Fatalf("expected one penalty, got %d", len(penalties))
	}
	p := penalties[0]
	if p.Origin != engine.OriginAuto {
		t.Errorf("expected AUTO origin, got %s", p.Origin)
	}
	if !p.Active {
		t.Error("auto penalty should be active")
	}
	if p.Reason != engine.AutoPenaltyReason {
		t.Errorf("unexpected reason %q", p.Reason)
	}
	if !p.Start.Equal(workDate) || !p.End.Equal(workDate.AddDate(0, 0, 3)) {
		t.Errorf("unexpected window %s", p.Window())
	}
	if p.ReferenceID != string(convID) {
		t.Errorf("expected convocation reference, got %q", p.ReferenceID)
	}
	if p.CreatedBy != "user-1" {
		t.Errorf("expected acting user stamped, got %s", p.CreatedBy)
	}
}

func TestRecordAttendance_AbsentTwice_SinglePenalty(t *testing.T) {
	// The (employee, convocation) pair is the idempotency key: repeating the
	// ABSENT mark updates the roster entry but never doubles the penalty.
	ctx := context.Background()
	mem := store.NewMemory()
	eng := newTestEngine(mem)

	seedEmployee(t, mem, "emp-1", engine.EmployeeActive)
	convID := buildDraft(t, eng, day(2024, time.July, 2), "emp-1")

	for i := 0; i < 3; i++ {
		if _, err := eng.RecordAttendance(ctx, convID, []engine.AttendanceUpdate{
			{EmployeeID: "emp-1", Status: engine.AttendanceAbsent},
		}, "user-1"); err != nil {
			t.Fatalf("round %d: %v", i, err)
		}
	}

	penalties, _ := mem.ListPenalties(ctx, engine.PenaltyFilter{EmployeeID: "emp-1"})
	if len(penalties) != 1 {
		t.Fatalf("expected exactly one penalty after repeats, got %d", len(penalties))
	}
}

func TestRecordAttendance_AbsentOnTwoConvocations_TwoPenalties(t *testing.T) {
	// Distinct absence events penalize independently.
	ctx := context.Background()
	mem := store.NewMemory()
	eng := newTestEngine(mem)

	seedEmployee(t, mem, "emp-1", engine.EmployeeActive)
	first := buildDraft(t, eng, day(2024, time.July, 2), "emp-1")
	second := buildDraft(t, eng, day(2024, time.July, 9), "emp-1")

	for _, id := range []engine.ConvocationID{first, second} {
		if _, err := eng.RecordAttendance(ctx, id, []engine.AttendanceUpdate{
			{EmployeeID: "emp-1", Status: engine.AttendanceAbsent},
		}, "user-1"); err != nil {
			t.Fatalf("convocation %s: %v", id, err)
		}
	}

	penalties, _ := mem.ListPenalties(ctx, engine.PenaltyFilter{EmployeeID: "emp-1"})
	if len(penalties) != 2 {
		t.Fatalf("expected two penalties for two absence events, got %d", len(penalties))
	}
}

func TestRecordAttendance_NonAbsentStatuses_NoPenalty(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	eng := newTestEngine(mem)

	seedEmployee(t, mem, "emp-1", engine.EmployeeActive)
	convID := buildDraft(t, eng, day(2024, time.July, 2), "emp-1")

	for _, status := range []engine.AttendanceStatus{
		engine.AttendanceConfirmed,
		engine.AttendanceAttended,
		engine.AttendanceJustified,
	} {
		if _, err := eng.RecordAttendance(ctx, convID, []engine.AttendanceUpdate{
			{EmployeeID: "emp-1", Status: status},
		}, "user-1"); err != nil {
			t.Fatalf("status %s: %v", status, err)
		}
	}

	penalties, _ := mem.ListPenalties(ctx, engine.PenaltyFilter{EmployeeID: "emp-1"})
	if len(penalties) != 0 {
		t.Errorf("only ABSENT penalizes; found %d penalties", len(penalties))
	}
}

// =============================================================================
// BATCH SEMANTICS TESTS
// =============================================================================

func TestRecordAttendance_UnknownConvocation_FailsWholeBatch(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(store.NewMemory())

	_, err := eng.RecordAttendance(ctx, "nope", []engine.AttendanceUpdate{
		{EmployeeID: "emp-1", Status: engine.AttendanceAttended},
	}, "user-1")
	if !errors.Is(err, engine.ErrConvocationNotFound) {
		t.Fatalf("expected ErrConvocationNotFound, got %v", err)
	}
}

func TestRecordAttendance_BadItem_FailsOnlyThatItem(t *testing.T) {
	// One unknown employee in the batch; the sibling still applies.
	ctx := context.Background()
	mem := store.NewMemory()
	eng := newTestEngine(mem)

	seedEmployee(t, mem, "emp-1", engine.EmployeeActive)
	convID := buildDraft(t, eng, day(2024, time.July, 2), "emp-1")

	result, err := eng.RecordAttendance(ctx, convID, []engine.AttendanceUpdate{
		{EmployeeID: "emp-ghost", Status: engine.AttendanceAttended},
		{EmployeeID: "emp-1", Status: engine.AttendanceAttended},
	}, "user-1")
	if err != nil {
		t.Fatalf("unexpected batch error: %v", err)
	}
	if result.Applied != 1 || result.Failed != 1 {
		t.Fatalf("expected 1 applied / 1 failed, got %d/%d", result.Applied, result.Failed)
	}
	if result.Items[0].Error == "" {
		t.Error("failed item should carry its error")
	}

	roster, _ := mem.ListRoster(ctx, convID)
	if len(roster) != 1 || roster[0].Status != engine.AttendanceAttended {
		t.Errorf("sibling update should have applied, roster: %v", roster)
	}
}

func TestRecordAttendance_UpsertLastWriteWins(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	eng := newTestEngine(mem)

	seedEmployee(t, mem, "emp-1", engine.EmployeeActive)
	convID := buildDraft(t, eng, day(2024, time.July, 2), "emp-1")

	updates := []engine.AttendanceUpdate{
		{EmployeeID: "emp-1", Status: engine.AttendanceConfirmed, Comment: "first"},
		{EmployeeID: "emp-1", Status: engine.AttendanceJustified, Comment: "second"},
	}
	if _, err := eng.RecordAttendance(ctx, convID, updates, "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	roster, _ := mem.ListRoster(ctx, convID)
	if len(roster) != 1 {
		t.Fatalf("upsert must keep a single row, got %d", len(roster))
	}
	if roster[0].Status != engine.AttendanceJustified || roster[0].Comment != "second" {
		t.Errorf("last write should win, got %s %q", roster[0].Status, roster[0].Comment)
	}
}
