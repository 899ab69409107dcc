package worker

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/wedloop-app/backend/config"
)

// SMTPMailer sends mail over plain SMTP with optional AUTH.
type SMTPMailer struct {
	cfg    config.EmailConfig
	logger *zap.Logger
}

// NewSMTPMailer creates an SMTP mailer.
func NewSMTPMailer(cfg config.EmailConfig, logger *zap.Logger) *SMTPMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPMailer{cfg: cfg, logger: logger}
}

// Send delivers one message. Body content is never logged because
// invitation bodies embed guest credentials.
func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	if m.cfg.SMTPHost == "" {
		m.logger.Warn("smtp not configured, dropping mail", zap.String("to", to))
		return nil
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}
	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		m.cfg.FromName, m.cfg.FromAddress, to, subject, body)
	if err := smtp.SendMail(addr, auth, m.cfg.FromAddress, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
