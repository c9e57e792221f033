package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/go-mail/mail"
	"github.com/manorfm/saas-admin/internal/domain"
	"github.com/manorfm/saas-admin/internal/infrastructure/config"
	"go.uber.org/zap"
)

// SMTPSender delivers plain text mail through an SMTP relay
type SMTPSender struct {
	from   string
	dialer *mail.Dialer
	send   func(d *mail.Dialer, m *mail.Message) error
	logger *zap.Logger
}

var _ domain.EmailSender = (*SMTPSender)(nil)

func NewSMTPSender(cfg *config.Config, logger *zap.Logger) *SMTPSender {
	d := mail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	d.Timeout = 10 * time.Second
	d.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost, MinVersion: tls.VersionTLS12}

	switch cfg.SMTPTLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.SSL = false
		d.StartTLSPolicy = mail.NoStartTLS
	default:
		d.SSL = false
		d.StartTLSPolicy = mail.MandatoryStartTLS
	}

	return &SMTPSender{
		from:   cfg.SMTPFrom,
		dialer: d,
		send: func(d *mail.Dialer, m *mail.Message) error {
			return d.DialAndSend(m)
		},
		logger: logger,
	}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.send(s.dialer, s.buildMessage(to, subject, body)); err != nil {
		s.logger.Error("Failed to send email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("smtp send: %w", err)
	}

	s.logger.Info("Email sent successfully",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}

func (s *SMTPSender) buildMessage(to, subject, body string) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}

// LogSender stands in for SMTP when no relay is configured. Only the
// recipient and subject are logged; bodies may carry reset tokens.
type LogSender struct {
	logger *zap.Logger
}

var _ domain.EmailSender = (*LogSender)(nil)

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	s.logger.Warn("SMTP is not configured, email dropped",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)))
	return nil
}

// NewSender picks the SMTP sender when a host is configured and the log sender otherwise
func NewSender(cfg *config.Config, logger *zap.Logger) domain.EmailSender {
	if cfg.SMTPHost == "" {
		return NewLogSender(logger)
	}
	return NewSMTPSender(cfg, logger)
}
