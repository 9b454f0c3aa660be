/*
penalty.go - Manual penalty path

PURPOSE:
  Administrative penalty creation and editing. Together with the no-show
  transition in attendance.go this is the only mutation path into the
  penalty ledger; no other code writes penalties.

RULES:
  - Manual penalties require employee, reason, and a valid window
    (end >= start). Origin is always MANUAL, active on creation.
  - Edits may change reason, window, and the active flag. Rows are never
    deleted; deactivation is the correction mechanism.
  - Overlapping windows for the same employee are allowed. The evaluator
    treats any one active matching window as blocking.
*/
package engine

import (
	"context"
	"fmt"
	"time"
)

// ManualPenaltyRequest describes an administrator-issued penalty.
type ManualPenaltyRequest struct {
	EmployeeID EmployeeID
	Reason     string
	Start      time.Time
	End        time.Time
	CreatedBy  UserID
}

// PenalizeManually validates and appends a MANUAL penalty.
func (e *Engine) PenalizeManually(ctx context.Context, req ManualPenaltyRequest) (*Penalty, error) {
	if req.EmployeeID == "" {
		return nil, &FieldError{Field: "employee_id", Message: "required"}
	}
	if req.Reason == "" {
		return nil, &FieldError{Field: "reason", Message: "required"}
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return nil, &FieldError{Field: "window", Message: "start and end are required"}
	}
	w := Window{Start: req.Start, End: req.End}
	if !w.Valid() {
		return nil, &FieldError{Field: "window", Message: "end before start"}
	}

	emp, err := e.store.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("load employee: %w", err)
	}
	if emp == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmployeeNotFound, req.EmployeeID)
	}

	p := Penalty{
		ID:         PenaltyID(newID()),
		EmployeeID: req.EmployeeID,
		Reason:     req.Reason,
		Start:      req.Start,
		End:        req.End,
		Active:     true,
		Origin:     OriginManual,
		CreatedBy:  actorOrSystem(req.CreatedBy),
		CreatedAt:  e.now(),
	}
	if err := e.store.SavePenalty(ctx, p); err != nil {
		return nil, fmt.Errorf("save penalty: %w", err)
	}
	return &p, nil
}

// PenaltyPatch carries the editable penalty fields. Nil means unchanged.
type PenaltyPatch struct {
	Reason *string
	Start  *time.Time
	End    *time.Time
	Active *bool
}

// UpdatePenalty applies a patch to an existing penalty. The patched window
// must still be valid.
func (e *Engine) UpdatePenalty(ctx context.Context, id PenaltyID, patch PenaltyPatch) (*Penalty, error) {
	p, err := e.store.GetPenalty(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load penalty: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPenaltyNotFound, id)
	}

	if patch.Reason != nil {
		p.Reason = *patch.Reason
	}
	if patch.Start != nil {
		p.Start = *patch.Start
	}
	if patch.End != nil {
		p.End = *patch.End
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	if !p.Window().Valid() {
		return nil, &FieldError{Field: "window", Message: "end before start"}
	}

	if err := e.store.UpdatePenalty(ctx, *p); err != nil {
		return nil, fmt.Errorf("update penalty: %w", err)
	}
	return p, nil
}
