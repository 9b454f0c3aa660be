/*
eligibility.go - The penalty-window eligibility evaluator

PURPOSE:
  The single place the "is this employee convocable at instant T" rule
  lives. Every call site (roster building, reporting, listings) goes
  through these functions; the rule is never re-implemented inline.

THE RULE:
  An employee is eligible at instant T unless some penalty on them has
  active == true AND start <= T <= end. Both conditions gate: an inactive
  penalty never blocks regardless of its window, and an active penalty
  whose window misses T never blocks.

PROPERTIES:
  - Pure: no side effects, operates on a pre-loaded penalty set.
  - Zero penalties => always eligible.
  - Overlapping active windows are permitted in the ledger; any one
    matching window suffices to block.

REFERENCE INSTANT:
  Callers pass the instant explicitly. The roster builder uses the
  convocation's work date; listings that annotate "currently penalized"
  pass the current time.
*/
package engine

import "time"

// BlockingPenalty returns the first penalty that excludes the employee at
// the given instant, or nil when none does. Penalty order follows the
// input slice; with overlapping windows any blocking one may be returned.
func BlockingPenalty(penalties []Penalty, at time.Time) *Penalty {
	for i := range penalties {
		if penalties[i].Blocks(at) {
			return &penalties[i]
		}
	}
	return nil
}

// IsEligible reports whether an employee with the given penalty set may be
// convoked at the given instant.
func IsEligible(penalties []Penalty, at time.Time) bool {
	return BlockingPenalty(penalties, at) == nil
}
