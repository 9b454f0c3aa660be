/*
smtp.go - SMTP delivery of convocation notices

PURPOSE:
  Implements engine.Notifier over SMTP using gomail. A nil-safe
  configuration loader reads the connection settings from the
  environment so deployments can swap providers without code changes.

CONFIGURATION (environment):
  MAIL_HOST  SMTP server host (empty disables SMTP delivery)
  MAIL_PORT  SMTP server port (default: 587)
  MAIL_USER  SMTP username
  MAIL_PASS  SMTP password
  MAIL_FROM  Sender address (default: MAIL_USER)

DELIVERY SEMANTICS:
  Send is synchronous and returns the dial/send error to the caller.
  The engine treats notification failures as non-fatal: a convocation
  is marked SENT even when individual messages bounce.

SEE ALSO:
  - engine/notify.go: Notifier interface and the logging fallback
  - engine/lifecycle.go: Where notices are composed and sent
*/
package mail

import (
	"context"
	"fmt"
	"os"
	"strconv"

	gomail "gopkg.in/gomail.v2"

	"github.com/convoca/convocation-engine/engine"
)

// Config holds SMTP connection settings.
type Config struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// ConfigFromEnv reads SMTP settings from the environment. Host is empty
// when SMTP is not configured; callers should fall back to a logging
// notifier in that case.
func ConfigFromEnv() Config {
	cfg := Config{
		Host: os.Getenv("MAIL_HOST"),
		User: os.Getenv("MAIL_USER"),
		Pass: os.Getenv("MAIL_PASS"),
		From: os.Getenv("MAIL_FROM"),
		Port: 587,
	}
	if p, err := strconv.Atoi(os.Getenv("MAIL_PORT")); err == nil && p > 0 {
		cfg.Port = p
	}
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	return cfg
}

// Enabled reports whether the configuration is complete enough to dial.
func (c Config) Enabled() bool {
	return c.Host != ""
}

// SMTPNotifier delivers notifications over SMTP.
type SMTPNotifier struct {
	cfg    Config
	dialer *gomail.Dialer
}

// NewSMTPNotifier creates a notifier for the given configuration.
func NewSMTPNotifier(cfg Config) *SMTPNotifier {
	return &SMTPNotifier{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass),
	}
}

// Send delivers one notification. The context is honored before dialing;
// gomail itself does not support cancellation mid-send.
func (n *SMTPNotifier) Send(ctx context.Context, note engine.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.cfg.From)
	msg.SetHeader("To", note.To)
	msg.SetHeader("Subject", note.Subject)
	msg.SetBody("text/html", note.HTMLBody)

	if err := n.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", note.To, err)
	}
	return nil
}
