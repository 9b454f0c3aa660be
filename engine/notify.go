/*
notify.go - Outbound notification boundary

PURPOSE:
  The send transition dispatches one notification per roster employee with
  an email address. Delivery is an external collaborator: failures are
  logged and counted, never fatal, and never roll back the SENT transition.

IMPLEMENTATIONS:
  - mail/smtp.go: SMTP delivery (production)
  - LogNotifier below: log-only fallback when SMTP is unconfigured
*/
package engine

import (
	"context"
	"log"
)

// Notification is a single outbound message.
type Notification struct {
	To       string
	Subject  string
	HTMLBody string
}

// Notifier delivers notifications. Implementations must be safe for
// sequential reuse across a send loop; per-recipient failures are returned,
// not accumulated.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// LogNotifier logs instead of delivering. Used in dev and tests, and as the
// fallback when no SMTP host is configured.
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, n Notification) error {
	log.Printf("notify (log only): to=%s subject=%q", n.To, n.Subject)
	return nil
}
