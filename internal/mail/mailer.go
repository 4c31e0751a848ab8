package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/memelab/memeqa/internal/config"
	"github.com/memelab/memeqa/internal/logger"
)

// Mailer delivers outbound mail. The development implementation logs instead
// of sending, mirroring how login links are inspected locally.
type Mailer interface {
	// Send delivers one plain-text message
	Send(ctx context.Context, to, subject, body string) error
}

// NewMailer creates a Mailer from configuration: a log-only mailer in dev
// mode, an SMTP mailer otherwise.
// Parameters:
//   - cfg: mail configuration.
// Returns:
//   - Mailer: initialized mailer implementation.
func NewMailer(cfg config.MailConfig) Mailer {
	if cfg.DevMode {
		return &LogMailer{}
	}
	return &SMTPMailer{cfg: cfg}
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct{}

// Send logs the message.
// Parameters:
//   - ctx: context for log correlation.
//   - to: recipient address.
//   - subject: message subject.
//   - body: plain-text body.
// Returns:
//   - error: always nil.
func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	logger.CtxInfo(ctx, "Mail (dev mode, not sent): to=%s, subject=%q\n%s", to, subject, body)
	return nil
}

// SMTPMailer sends mail through an authenticated SMTP relay.
type SMTPMailer struct {
	cfg config.MailConfig
}

// Send delivers the message over SMTP with STARTTLS-capable PLAIN auth.
// Parameters:
//   - ctx: context (unused by net/smtp, kept for interface symmetry).
//   - to: recipient address.
//   - subject: message subject.
//   - body: plain-text body.
// Returns:
//   - error: non-nil if delivery fails.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}

	msg := strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := smtp.SendMail(addr, auth, from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}
