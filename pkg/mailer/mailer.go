package mailer

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"time"

	"go.uber.org/zap"
)

// Config holds SMTP configuration
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
	// Timeout bounds one whole SMTP session. Zero means DefaultTimeout.
	Timeout time.Duration
}

// DefaultTimeout caps a session when Config.Timeout is unset
const DefaultTimeout = 30 * time.Second

type sendFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer handles sending emails
type Mailer struct {
	config Config
	logger *zap.Logger
	sendFn sendFunc
}

// New creates a new Mailer instance
func New(cfg Config, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	m := &Mailer{config: cfg, logger: logger}
	m.sendFn = m.deliver
	return m
}

// SendEmail delivers a plain-text email
func (m *Mailer) SendEmail(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.send(ctx, to, subject, body)
}

// send delivers an email via SMTP
func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%s", m.config.Host, m.config.Port)

	var auth smtp.Auth
	if m.config.Username != "" && m.config.Password != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	err := m.sendFn(ctx, addr, auth, m.config.From, []string{to}, m.buildMessage(to, subject, body))
	if err != nil {
		m.logger.Error("failed to send email", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func (m *Mailer) buildMessage(to, subject, body string) []byte {
	headers := [][2]string{
		{"From", fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", m.config.FromName), m.config.From)},
		{"To", to},
		{"Subject", mime.QEncoding.Encode("utf-8", subject)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/plain; charset=\"utf-8\""},
	}

	var msg bytes.Buffer
	for _, h := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)
	return msg.Bytes()
}
