package mail

import (
	"fmt"

	"github.com/neighbourhood-connect/backend/internal/config"
	"gopkg.in/gomail.v2"
)

// Mailer delivers one message to one recipient. Callers treat any returned
// error as a delivery failure and roll back or record state accordingly.
type Mailer interface {
	Send(toEmail, toName, subject, htmlBody, textBody string) error
}

// SMTPMailer sends through an authenticated SMTP relay (STARTTLS on 587).
type SMTPMailer struct {
	dialer    *gomail.Dialer
	fromEmail string
	fromName  string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer:    gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		fromEmail: cfg.SMTPFromEmail,
		fromName:  cfg.SMTPFromName,
	}
}

func (m *SMTPMailer) Send(toEmail, toName, subject, htmlBody, textBody string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.fromEmail, m.fromName)
	msg.SetAddressHeader("To", toEmail, toName)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", textBody)
	msg.AddAlternative("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}
