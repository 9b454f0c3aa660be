/*
attendance.go - Attendance recording and the no-show penalty transition

PURPOSE:
  Applies a batch of attendance updates to a convocation's roster and
  creates the AUTO penalty that a no-show produces. This file is the ONLY
  place AUTO penalties are written.

BATCH SEMANTICS:
  - Unknown convocation fails the whole batch (ErrConvocationNotFound).
  - A single bad item (unknown employee, storage failure) fails only that
    item; siblings proceed independently.
  - Roster entries are upserted: create-if-absent, else overwrite status
    and comment (last write wins, no merge).

AUTO-PENALTY:
  Marking ABSENT creates one penalty with:
    window    = [workDate, workDate + 3 days]
    reason    = "unexcused absence"
    origin    = AUTO
    reference = convocation id
  The (employee, convocation) pair is a natural idempotency key: if an
  AUTO penalty for that pair already exists, marking ABSENT again updates
  the roster entry but creates no second penalty.

SEE ALSO:
  - types.go: AutoPenaltyWindow, AutoPenaltyReason
  - store.go: HasAutoPenalty, UpsertRosterEntry
*/
package engine

import (
	"context"
	"fmt"
)

// AttendanceUpdate is one item of an attendance batch. Status must already
// be normalized (see NormalizeAttendanceStatus); the engine rejects raw
// literals.
type AttendanceUpdate struct {
	EmployeeID EmployeeID
	Status     AttendanceStatus
	Comment    string
}

// AttendanceItemResult reports the outcome of a single update.
type AttendanceItemResult struct {
	EmployeeID EmployeeID       `json:"employee_id"`
	Status     AttendanceStatus `json:"status,omitempty"`
	Penalized  bool             `json:"penalized"`
	Error      string           `json:"error,omitempty"`
}

// AttendanceResult reports a whole batch.
type AttendanceResult struct {
	Applied int
	Failed  int
	Items   []AttendanceItemResult
}

// RecordAttendance upserts roster entries for the batch and applies the
// no-show penalty transition per item. Invariant: every transition to
// ABSENT yields exactly one AUTO penalty per (employee, convocation).
func (e *Engine) RecordAttendance(ctx context.Context, convID ConvocationID, updates []AttendanceUpdate, actor UserID) (*AttendanceResult, error) {
	conv, err := e.store.GetConvocation(ctx, convID)
	if err != nil {
		return nil, fmt.Errorf("load convocation: %w", err)
	}
	if conv == nil {
		return nil, fmt.Errorf("%w: %s", ErrConvocationNotFound, convID)
	}

	result := &AttendanceResult{}
	for _, u := range updates {
		item := e.applyUpdate(ctx, conv, u, actor)
		if item.Error != "" {
			result.Failed++
		} else {
			result.Applied++
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}

// applyUpdate handles one batch item. Failures are reported on the item,
// never propagated, so siblings keep going.
func (e *Engine) applyUpdate(ctx context.Context, conv *Convocation, u AttendanceUpdate, actor UserID) AttendanceItemResult {
	item := AttendanceItemResult{EmployeeID: u.EmployeeID, Status: u.Status}

	emp, err := e.store.GetEmployee(ctx, u.EmployeeID)
	if err != nil {
		item.Error = err.Error()
		return item
	}
	if emp == nil {
		item.Error = ErrEmployeeNotFound.Error()
		return item
	}

	entry := RosterEntry{
		ConvocationID: conv.ID,
		EmployeeID:    u.EmployeeID,
		Status:        u.Status,
		Comment:       u.Comment,
		UpdatedAt:     e.now(),
	}
	if err := e.store.UpsertRosterEntry(ctx, entry); err != nil {
		item.Error = err.Error()
		return item
	}

	if u.Status.IsNoShow() {
		penalized, err := e.maybeAutoPenalize(ctx, conv, u.EmployeeID, actor)
		if err != nil {
			// Penalty failure does not undo the roster update; the item
			// reports it so the caller can retry.
			item.Error = err.Error()
			return item
		}
		item.Penalized = penalized
	}
	return item
}

// maybeAutoPenalize creates the no-show penalty unless this absence event
// already produced one. Returns whether a penalty was created.
func (e *Engine) maybeAutoPenalize(ctx context.Context, conv *Convocation, employeeID EmployeeID, actor UserID) (bool, error) {
	exists, err := e.store.HasAutoPenalty(ctx, employeeID, string(conv.ID))
	if err != nil {
		return false, fmt.Errorf("check auto penalty: %w", err)
	}
	if exists {
		return false, nil
	}

	w := AutoPenaltyWindow(conv.WorkDate)
	p := Penalty{
		ID:          PenaltyID(newID()),
		EmployeeID:  employeeID,
		Reason:      AutoPenaltyReason,
		Start:       w.Start,
		End:         w.End,
		Active:      true,
		Origin:      OriginAuto,
		ReferenceID: string(conv.ID),
		CreatedBy:   actorOrSystem(actor),
		CreatedAt:   e.now(),
	}
	if err := e.store.SavePenalty(ctx, p); err != nil {
		return false, fmt.Errorf("save auto penalty: %w", err)
	}
	return true, nil
}
