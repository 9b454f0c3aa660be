/*
roster.go - Roster building at convocation creation

PURPOSE:
  Turns a requested employee list into a persisted convocation plus one
  roster entry per eligible employee. Candidates are partitioned into
  accepted and rejected; every rejection names its reasons and, when a
  penalty is involved, the blocking window.

ALGORITHM:
  1. Validate: title, work date, at least one candidate.
  2. Deduplicate candidate ids (order irrelevant).
  3. Load the active penalty ledger ONCE for a single consistent read;
     eligibility decisions within the batch never observe each other.
  4. Per candidate: reject unknown ids, INACTIVE employees, and employees
     with a blocking penalty at the reference instant. Inactive and
     penalized are independent reasons and are both reported on overlap.
  5. All rejected => NoEligibleEmployeesError carrying the rejections.
  6. Otherwise persist the convocation (DRAFT) and one CONVOKED roster
     entry per accepted employee.

SEE ALSO:
  - eligibility.go: The rule applied in step 4
  - lifecycle.go: What happens to the convocation afterwards
*/
package engine

import (
	"context"
	"fmt"
	"time"
)

// RosterRequest describes a convocation to create.
type RosterRequest struct {
	Title       string
	Description string
	WorkDate    time.Time
	EmployeeIDs []EmployeeID

	// ReferenceAt is the instant penalties are evaluated against. Zero
	// means "use WorkDate", which is the business rule for call-ups: a
	// penalty matters if it covers the day being worked, not the day the
	// operator clicks the button.
	ReferenceAt time.Time

	CreatedBy UserID
}

// RosterResult reports a successful roster build.
type RosterResult struct {
	Convocation Convocation
	Accepted    []EmployeeID
	Rejected    []Rejection
}

// BuildRoster validates the request, partitions candidates through the
// eligibility evaluator, and persists the convocation with its roster.
// Invariant: a roster entry is only ever created for an ACTIVE employee
// with no blocking penalty at the reference instant.
func (e *Engine) BuildRoster(ctx context.Context, req RosterRequest) (*RosterResult, error) {
	if req.Title == "" {
		return nil, &FieldError{Field: "title", Message: "required"}
	}
	if req.WorkDate.IsZero() {
		return nil, &FieldError{Field: "work_date", Message: "required"}
	}
	if len(req.EmployeeIDs) == 0 {
		return nil, &FieldError{Field: "employees", Message: "at least one employee required"}
	}

	refAt := req.ReferenceAt
	if refAt.IsZero() {
		refAt = req.WorkDate
	}

	candidates := dedupe(req.EmployeeIDs)

	// Single consistent read of the active ledger for the whole batch.
	active, err := e.store.ListPenalties(ctx, PenaltyFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("load penalty ledger: %w", err)
	}
	byEmployee := make(map[EmployeeID][]Penalty)
	for _, p := range active {
		byEmployee[p.EmployeeID] = append(byEmployee[p.EmployeeID], p)
	}

	var accepted []Employee
	var rejected []Rejection
	for _, id := range candidates {
		emp, err := e.store.GetEmployee(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load employee %s: %w", id, err)
		}
		if emp == nil {
			rejected = append(rejected, Rejection{EmployeeID: id, Reasons: []RejectReason{RejectNotFound}})
			continue
		}

		var reasons []RejectReason
		var window *Window
		if emp.Status != EmployeeActive {
			reasons = append(reasons, RejectInactive)
		}
		if p := BlockingPenalty(byEmployee[id], refAt); p != nil {
			reasons = append(reasons, RejectPenalized)
			w := p.Window()
			window = &w
		}

		if len(reasons) > 0 {
			rejected = append(rejected, Rejection{
				EmployeeID: id,
				Name:       emp.FullName(),
				Reasons:    reasons,
				Window:     window,
			})
			continue
		}
		accepted = append(accepted, *emp)
	}

	if len(accepted) == 0 {
		return nil, &NoEligibleEmployeesError{Rejected: rejected}
	}

	now := e.now()
	conv := Convocation{
		ID:          ConvocationID(newID()),
		Title:       req.Title,
		Description: req.Description,
		WorkDate:    req.WorkDate,
		Status:      ConvocationDraft,
		CreatedBy:   actorOrSystem(req.CreatedBy),
		CreatedAt:   now,
	}
	if err := e.store.SaveConvocation(ctx, conv); err != nil {
		return nil, fmt.Errorf("save convocation: %w", err)
	}

	result := &RosterResult{Convocation: conv, Rejected: rejected}
	for _, emp := range accepted {
		entry := RosterEntry{
			ConvocationID: conv.ID,
			EmployeeID:    emp.ID,
			Status:        AttendanceConvoked,
			UpdatedAt:     now,
		}
		if err := e.store.UpsertRosterEntry(ctx, entry); err != nil {
			return nil, fmt.Errorf("save roster entry %s: %w", emp.ID, err)
		}
		result.Accepted = append(result.Accepted, emp.ID)
	}
	return result, nil
}

// dedupe preserves first-seen order while dropping repeated ids.
func dedupe(ids []EmployeeID) []EmployeeID {
	seen := make(map[EmployeeID]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
