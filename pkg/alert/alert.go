package alert

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/soundprediction/recall/pkg/config"
)

// Alerter delivers operational alerts, such as a circuit breaker tripping
// on the embedding provider.
type Alerter interface {
	Alert(subject, message string) error
}

// EmailAlerter implements Alerter over SMTP.
type EmailAlerter struct {
	cfg config.AlertConfig
}

// NewEmailAlerter creates a new email alerter
func NewEmailAlerter(cfg config.AlertConfig) *EmailAlerter {
	return &EmailAlerter{
		cfg: cfg,
	}
}

// Alert sends an email with the given subject and message. Disabled
// configuration makes it a no-op so callers never need to branch.
func (a *EmailAlerter) Alert(subject, message string) error {
	if !a.cfg.Enabled {
		return nil
	}
	if a.cfg.SMTPHost == "" || len(a.cfg.To) == 0 {
		return fmt.Errorf("alerting enabled but smtp_host or recipients missing")
	}

	auth := smtp.PlainAuth("", a.cfg.Username, a.cfg.Password, a.cfg.SMTPHost)

	body := fmt.Sprintf("To: %s\r\nSubject: [recall] %s\r\n\r\n%s\r\n",
		strings.Join(a.cfg.To, ","), subject, message)

	addr := fmt.Sprintf("%s:%d", a.cfg.SMTPHost, a.cfg.SMTPPort)
	if err := smtp.SendMail(addr, auth, a.cfg.From, a.cfg.To, []byte(body)); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	return nil
}

// NoOpAlerter discards alerts. Used when alerting is not configured.
type NoOpAlerter struct{}

func (n *NoOpAlerter) Alert(subject, message string) error {
	return nil
}

// FuncAlerter adapts a function to the Alerter interface.
type FuncAlerter func(subject, message string) error

func (f FuncAlerter) Alert(subject, message string) error {
	return f(subject, message)
}
