package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig describes the outgoing mail server.
type SMTPConfig struct {
	Server   string
	Port     int
	User     string
	Password string
	From     string
	// TLS is one of "mandatory", "opportunistic", "ssl" or "none".
	TLS     string
	Timeout time.Duration
}

// SMTP sends plain-text mail, one SMTP session per message.
type SMTP struct {
	cfg SMTPConfig
}

func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Server == "" {
		return nil, fmt.Errorf("smtp: server is required")
	}
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp: from address or user is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &SMTP{cfg: cfg}, nil
}

func (s *SMTP) Send(ctx context.Context, recipient, subject, body string) error {
	msg, err := s.newMessage(recipient, subject, body)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.cfg.Server, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp: failed to create client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp: failed to send to %s: %w", recipient, err)
	}

	return nil
}

func (s *SMTP) newMessage(recipient, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("smtp: invalid from address %q: %w", s.cfg.From, err)
	}
	if err := msg.To(recipient); err != nil {
		return nil, fmt.Errorf("smtp: invalid recipient %q: %w", recipient, err)
	}
	msg.Subject(subject)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextPlain, body)

	return msg, nil
}

func (s *SMTP) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTimeout(s.cfg.Timeout),
	}

	switch strings.ToLower(s.cfg.TLS) {
	case "none":
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	case "opportunistic":
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	case "ssl":
		opts = append(opts, mail.WithSSL())
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	if s.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.User),
			mail.WithPassword(s.cfg.Password),
		)
	}

	return opts
}
