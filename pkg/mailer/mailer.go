package mailer

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"github.com/rs/zerolog"
)

// Attachment is a file sent along with a message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is a single HTML mail.
type Message struct {
	From        string
	To          []string
	Subject     string
	HTML        []byte
	Attachments []Attachment
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config contains the SMTP relay settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPSender delivers messages through an SMTP relay.
type SMTPSender struct {
	addr   string
	auth   smtp.Auth
	logger zerolog.Logger
}

// NewSMTPSender constructs an SMTP sender. Authentication is skipped when
// no credentials are configured.
func NewSMTPSender(cfg Config, logger zerolog.Logger) (*SMTPSender, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("smtp host must be provided")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}

	var auth smtp.Auth
	if cfg.Username != "" || cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return &SMTPSender{
		addr:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth:   auth,
		logger: logger.With().Str("component", "smtp_sender").Logger(),
	}, nil
}

// Send builds the MIME message and hands it to the relay.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e, err := build(msg)
	if err != nil {
		return err
	}

	if err := e.Send(s.addr, s.auth); err != nil {
		s.logger.Error().Err(err).Strs("to", msg.To).Msg("smtp delivery failed")
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogSender logs messages instead of sending them.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender constructs a logging sender for development.
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "log_sender").Logger()}
}

// Send logs the message envelope.
func (l *LogSender) Send(ctx context.Context, msg Message) error {
	if _, err := build(msg); err != nil {
		return err
	}
	l.logger.Info().
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Int("attachments", len(msg.Attachments)).
		Msg("mail delivered to log")
	return nil
}

func build(msg Message) (*email.Email, error) {
	if len(msg.To) == 0 {
		return nil, fmt.Errorf("message has no recipients")
	}

	e := email.NewEmail()
	e.From = msg.From
	e.To = msg.To
	e.Subject = msg.Subject
	e.HTML = msg.HTML

	for _, attachment := range msg.Attachments {
		if _, err := e.Attach(bytes.NewReader(attachment.Content), attachment.Filename, attachment.ContentType); err != nil {
			return nil, fmt.Errorf("attach %s: %w", attachment.Filename, err)
		}
	}
	return e, nil
}
