package email

import (
	"fmt"
	"net/smtp"

	"autoposter/shared/config"
)

// Sender delivers operational alert emails over SMTP. It is optional
// infrastructure: when the SMTP settings are incomplete the sender reports
// itself disabled and callers skip it.
type Sender struct {
	config *config.EmailConfig
}

func NewSender(cfg *config.EmailConfig) *Sender {
	return &Sender{
		config: cfg,
	}
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (s *Sender) Enabled() bool {
	return s.config.SMTPServer != "" && s.config.FromEmail != "" && s.config.ToEmail != ""
}

// SendAlert sends a plain-text alert to the configured operator address.
func (s *Sender) SendAlert(subject, body string) error {
	if !s.Enabled() {
		return fmt.Errorf("email alerts are not configured")
	}

	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.SMTPServer)
	}

	to := []string{s.config.ToEmail}
	msg := []byte(fmt.Sprintf(`To: %s
From: %s
Subject: %s
MIME-Version: 1.0
Content-Type: text/plain; charset=UTF-8

%s`, s.config.ToEmail, s.config.FromEmail, subject, body))

	addr := fmt.Sprintf("%s:%d", s.config.SMTPServer, s.config.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.FromEmail, to, msg)
}
