package account

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/eliswilliam/CINEHOME/internal/config"
)

// Mailer delivers password-reset verification codes.
type Mailer interface {
	Configured() bool
	SendVerificationCode(ctx context.Context, to, code string) error
}

type smtpMailer struct {
	cfg config.SMTPConfig
}

// NewSMTPMailer builds a mailer from SMTP config. An unconfigured mailer
// reports Configured() == false and the reset flow falls back to dev mode.
func NewSMTPMailer(cfg config.SMTPConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) Configured() bool {
	return m.cfg.Host != "" && m.cfg.From != ""
}

func (m *smtpMailer) SendVerificationCode(ctx context.Context, to, code string) error {
	port := m.cfg.Port
	if port == 0 {
		port = 587
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: CINEHOME - Código de recuperação\r\n\r\n"+
		"Seu código de recuperação de senha é: %s\r\n\r\nEle expira em 10 minutos.\r\n",
		m.cfg.From, to, code)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(body)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
