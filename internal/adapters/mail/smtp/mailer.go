// Package smtp delivers HTML mail through an SMTP relay.
package smtp

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
)

type Config struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

type Mailer struct {
	cfg    Config
	dialer *gomail.Dialer
}

// NewMailer returns a mailer that only logs messages when the relay is not configured.
func NewMailer(cfg Config) *Mailer {
	m := &Mailer{cfg: cfg}
	if cfg.Host != "" && cfg.User != "" && cfg.Pass != "" {
		m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	}
	return m
}

func (m *Mailer) Simulated() bool { return m.dialer == nil }

func (m *Mailer) Send(ctx context.Context, to, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.dialer == nil {
		log.Info().Str("to", to).Str("subject", subject).Int("body_len", len(html)).Msg("smtp not configured, email not sent")
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}
