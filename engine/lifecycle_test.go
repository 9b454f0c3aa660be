package engine_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/convoca/convocation-engine/engine"
	"github.com/convoca/convocation-engine/engine/store"
)

// recordingNotifier captures outbound notifications and can be told to
// fail for specific recipients.
type recordingNotifier struct {
	sent []engine.Notification
	fail map[string]bool
}

func (n *recordingNotifier) Send(_ context.Context, note engine.Notification) error {
	if n.fail[note.To] {
		return fmt.Errorf("delivery to %s refused", note.To)
	}
	n.sent = append(n.sent, note)
	return nil
}

// =============================================================================
// SEND TESTS
// =============================================================================

func TestSend_MarksSentAndNotifiesRoster(t *testing.T) {
	// GIVEN: A DRAFT convocation with two employees, both with emails
	// WHEN: Sending
	// THEN: Status becomes SENT and both are notified
	ctx := context.Background()
	mem := store.NewMemory()
	notifier := &recordingNotifier{}
	eng := newTestEngine(mem, engine.WithNotifier(notifier))

	seedEmployee(t, mem, "emp-1", engine.EmployeeActive)
	seedEmployee(t, mem, "emp-2", engine.EmployeeActive)
	convID := buildDraft(t, eng, day(2024, time.July, 2), "emp-1", "emp-2")

	result, err := eng.Send(ctx, convID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Sent != 2 || result.Total != 2 {
		t.Errorf("expected 2/2 sent, got %d/%d", result.Sent, result.Total)
	}
	if len(notifier.sent) != 2 {
		t.Errorf("expected 2 notifications, got %d", len(notifier.sent))
	}

	conv, _ := mem.GetConvocation(ctx, convID)
	if conv.Status != engine.ConvocationSent {
		t.Errorf("expected SENT, got %s", conv.Status)
	}
}

func TestSend_DeliveryFailure_StillMarksSent(t *testing.T) {
	// Partial delivery never aborts the transition; the counts reflect it.
	ctx := context.Background()
	mem := store.NewMemory()
	notifier := &recordingNotifier{fail: map[string]bool{"emp-2@example.com": true}}
	eng := newTestEngine(mem, engine.WithNotifier(notifier))

	seedEmployee(t, mem, "emp-1", engine.EmployeeActive)
	seedEmployee(t, mem, "emp-2", engine.EmployeeActive)
	convID := buildDraft(t, eng, day(2024, time.July, 2), "emp-1", "emp-2")

	result, err := eng.Send(ctx, convID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Sent != 1 || result.Total != 2 {
		t.Errorf("expected 1/2 sent, got %d/%d", result.Sent, result.Total)
	}

	conv, _ := mem.GetConvocation(ctx, convID)
	if conv.Status != engine.ConvocationSent {
		t.Errorf("convocation must be SENT despite bounces, got %s", conv.Status)
	}
}

func TestSend_SkipsEmployeesWithoutEmail(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	notifier := &recordingNotifier{}
	eng := newTestEngine(mem, engine.WithNotifier(notifier))

	seedEmployee(t, mem, "emp-1", engine.EmployeeActive)
	noEmail := seedEmployee(t, mem, "emp-2", engine.EmployeeActive)
	noEmail.Email = ""
	if err := mem.SaveEmployee(ctx, noEmail); err != nil {
		t.Fatal(err)
	}
	convID := buildDraft(t, eng, day(2024, time.July, 2), "emp-1", "emp-2")

	result, err := eng.Send(ctx, convID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Sent != 1 || result.Total != 2 {
		t.Errorf("expected 1/2 sent, got %d/%d", result.Sent, result.Total)
	}
}

func TestSend_Twice_RejectedUnchanged(t *testing.T) {
	// SENT is terminal: a second send is a state error and notifies no one.
	ctx := context.Background()
	mem := store.NewMemory()
	notifier := &recordingNotifier{}
	eng := newTestEngine(mem, engine.WithNotifier(notifier))

	seedEmployee(t, mem, "emp-1", engine.EmployeeActive)
	convID := buildDraft(t, eng, day(2024, time.July, 2), "emp-1")

	if _, err := eng.Send(ctx, convID); err != nil {
		t.Fatalf("first send: %v", err)
	}
	firstCount := len(notifier.sent)

	_, err := eng.Send(ctx, convID)
	if !errors.Is(err, engine.ErrInvalidStateTransition) {
		t.Fatalf("expected state transition error, got %v", err)
	}
	var ste *engine.InvalidStateTransitionError
	if !errors.As(err, &ste) || ste.Current != engine.ConvocationSent || ste.Action != "send" {
		t.Errorf("unexpected error detail: %+v", ste)
	}
	if len(notifier.sent) != firstCount {
		t.Error("second send must not notify anyone")
	}
}

func TestSend_UnknownConvocation(t *testing.T) {
	eng := newTestEngine(store.NewMemory())
	_, err := eng.Send(context.Background(), "nope")
	if !errors.Is(err, engine.ErrConvocationNotFound) {
		t.Fatalf("expected ErrConvocationNotFound, got %v", err)
	}
}

// =============================================================================
// DELETE TESTS
// =============================================================================

func TestDelete_Draft_CascadesRoster(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	eng := newTestEngine(mem)

	seedEmployee(t, mem, "emp-1", engine.EmployeeActive)
	convID := buildDraft(t, eng, day(2024, time.July, 2), "emp-1")

	if err := eng.Delete(ctx, convID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	conv, _ := mem.GetConvocation(ctx, convID)
	if conv != nil {
		t.Error("convocation should be gone")
	}
	roster, _ := mem.ListRoster(ctx, convID)
	if len(roster) != 0 {
		t.Errorf("roster should cascade, found %d entries", len(roster))
	}
}

func TestDelete_Sent_Rejected(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	eng := newTestEngine(mem)

	seedEmployee(t, mem, "emp-1", engine.EmployeeActive)
	convID := buildDraft(t, eng, day(2024, time.July, 2), "emp-1")
	if _, err := eng.Send(ctx, convID); err != nil {
		t.Fatalf("send: %v", err)
	}

	err := eng.Delete(ctx, convID)
	if !errors.Is(err, engine.ErrInvalidStateTransition) {
		t.Fatalf("expected state transition error, got %v", err)
	}

	conv, _ := mem.GetConvocation(ctx, convID)
	if conv == nil || conv.Status != engine.ConvocationSent {
		t.Error("failed delete must leave the convocation untouched")
	}
}
