/*
lifecycle.go - Convocation send and delete state machine

PURPOSE:
  Guards the DRAFT -> SENT transition and deletion.

STATES:
  DRAFT -> SENT   (terminal; exactly once)

SEND:
  Only a DRAFT convocation can be sent; re-sending a SENT one is rejected
  with InvalidStateTransitionError and changes nothing. During send, one
  notification goes to each roster employee with an email address.
  Per-recipient delivery failures are logged and excluded from the sent
  count but never abort the transition: the convocation is marked SENT
  regardless, and the caller gets sent/total figures.

DELETE:
  Permitted only while DRAFT; the roster cascades away with the
  convocation. Deleting a SENT convocation fails with
  InvalidStateTransitionError.
*/
package engine

import (
	"context"
	"fmt"
	"log"
)

// SendResult reports how many notifications were delivered.
type SendResult struct {
	Sent  int `json:"sent"`
	Total int `json:"total"`
}

// Send transitions a DRAFT convocation to SENT, notifying every roster
// employee that has an email address. Partial delivery is acceptable and
// reflected in the result counts.
func (e *Engine) Send(ctx context.Context, id ConvocationID) (*SendResult, error) {
	conv, err := e.store.GetConvocation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load convocation: %w", err)
	}
	if conv == nil {
		return nil, fmt.Errorf("%w: %s", ErrConvocationNotFound, id)
	}
	if conv.Status != ConvocationDraft {
		return nil, &InvalidStateTransitionError{ConvocationID: id, Current: conv.Status, Action: "send"}
	}

	roster, err := e.store.ListRoster(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	result := &SendResult{Total: len(roster)}
	for _, entry := range roster {
		emp, err := e.store.GetEmployee(ctx, entry.EmployeeID)
		if err != nil || emp == nil || emp.Email == "" {
			continue
		}
		n := Notification{
			To:       emp.Email,
			Subject:  "[Convocation] " + conv.Title,
			HTMLBody: convocationNotice(conv, emp),
		}
		if err := e.notifier.Send(ctx, n); err != nil {
			// Best effort: a failed recipient never blocks the others or
			// the transition itself.
			log.Printf("send convocation %s: notify %s failed: %v", id, emp.Email, err)
			continue
		}
		result.Sent++
	}

	if err := e.store.SetConvocationStatus(ctx, id, ConvocationSent); err != nil {
		return nil, fmt.Errorf("mark sent: %w", err)
	}
	return result, nil
}

// Delete removes a DRAFT convocation and its roster.
func (e *Engine) Delete(ctx context.Context, id ConvocationID) error {
	conv, err := e.store.GetConvocation(ctx, id)
	if err != nil {
		return fmt.Errorf("load convocation: %w", err)
	}
	if conv == nil {
		return fmt.Errorf("%w: %s", ErrConvocationNotFound, id)
	}
	if conv.Status != ConvocationDraft {
		return &InvalidStateTransitionError{ConvocationID: id, Current: conv.Status, Action: "delete"}
	}
	return e.store.DeleteConvocation(ctx, id)
}

// convocationNotice renders the notification body for one employee.
func convocationNotice(conv *Convocation, emp *Employee) string {
	return fmt.Sprintf(
		"<p>Dear <b>%s</b>,</p>"+
			"<p>You have been convoked for: <b>%s</b></p>"+
			"<p>Work date: <b>%s</b></p>"+
			"<p>%s</p>",
		emp.FullName(), conv.Title, conv.WorkDate.Format("2006-01-02"), conv.Description)
}
