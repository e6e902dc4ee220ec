package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	var auth smtp.Auth

	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	body := buildRFC822(m.cfg.From, msg)

	// smtp.SendMail has no context hook; run it in a goroutine so a stalled
	// provider cannot outlive the caller's deadline.
	done := make(chan error, 1)

	go func() {
		done <- smtp.SendMail(addr, auth, envelopeAddr(m.cfg.From), []string{msg.To}, body)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildRFC822(from string, msg Message) []byte {
	var b strings.Builder

	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	return []byte(b.String())
}

// envelopeAddr strips a display name like `Jobhub <no-reply@jobhub.local>`
// down to the bare address the SMTP envelope wants.
func envelopeAddr(from string) string {
	start := strings.Index(from, "<")
	end := strings.Index(from, ">")

	if start >= 0 && end > start {
		return from[start+1 : end]
	}

	return strings.TrimSpace(from)
}
