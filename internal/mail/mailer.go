package mail

import (
	"context"
	"fmt"

	"storefront/internal/config"

	gomail "github.com/wneessen/go-mail"
	"github.com/rs/zerolog"
)

// Mailer delivers plain-text email to a single recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// smtpMailer implements Mailer over SMTP.
type smtpMailer struct {
	client *gomail.Client
	from   string
	logger zerolog.Logger
}

// NewSMTPMailer creates a Mailer using the configured SMTP relay. Credentials
// are optional; without a username the client connects unauthenticated.
func NewSMTPMailer(cfg config.SMTPConfig, logger zerolog.Logger) (Mailer, error) {
	opts := []gomail.Option{gomail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return &smtpMailer{
		client: client,
		from:   cfg.From,
		logger: logger.With().Str("component", "mailer").Logger(),
	}, nil
}

// Send delivers a plain-text message.
func (m *smtpMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		m.logger.Error().Err(err).Str("to", to).Msg("failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Debug().Str("to", to).Str("subject", subject).Msg("email sent")

	return nil
}
