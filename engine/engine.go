/*
engine.go - Engine construction and shared plumbing

PURPOSE:
  The Engine wires the store, the notifier and a clock behind the four
  operations the system exposes: roster building, attendance recording,
  the send transition and the manual penalty path.

CLOCK:
  "Now" is injectable so tests can pin time. Call sites that need a
  reference instant pass it explicitly; the clock only fills defaults
  (created-at stamps, unspecified reference instants).
*/
package engine

import (
	"time"

	"github.com/google/uuid"
)

// Engine executes the convocation, attendance and penalty operations
// against a Store.
type Engine struct {
	store    Store
	notifier Notifier
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier sets the outbound notifier. Defaults to LogNotifier.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithClock overrides the time source. Tests use this to pin "now".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine on top of the given store.
func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		notifier: LogNotifier{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// newID returns a fresh identifier for engine-created records.
func newID() string { return uuid.NewString() }

// actorOrSystem falls back to the system identity when no authenticated
// caller was threaded in.
func actorOrSystem(actor UserID) UserID {
	if actor == "" {
		return SystemUser
	}
	return actor
}
