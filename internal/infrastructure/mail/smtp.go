package mail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"

	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers mail through an SMTP relay, opening one connection per
// message. Every Send builds its own gomail.Client, so one sender can serve
// all queue workers.
type SMTPSender struct {
	newClient func() (*gomail.Client, error)
	from      string
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	newClient := func() (*gomail.Client, error) {
		return gomail.NewClient(cfg.Host, opts...)
	}
	if _, err := newClient(); err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPSender{newClient: newClient, from: cfg.From}, nil
}

func (s *SMTPSender) Send(ctx context.Context, email ports.Email) error {
	msg, err := buildMessage(s.from, email)
	if err != nil {
		return err
	}
	client, err := s.newClient()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", email.To, err)
	}
	return nil
}

func buildMessage(from string, email ports.Email) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := msg.To(email.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", email.To, err)
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, email.TextBody)
	if email.HTMLBody != "" {
		msg.AddAlternativeString(gomail.TypeTextHTML, email.HTMLBody)
	}
	return msg, nil
}

// LogSender writes mails to the log instead of sending them. Used when no
// SMTP host is configured.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, email ports.Email) error {
	s.log.Info().
		Str("to", email.To).
		Str("subject", email.Subject).
		Str("body", email.TextBody).
		Msg("smtp disabled, email not sent")
	return nil
}
