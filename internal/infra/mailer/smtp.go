// Package mailer implements digest email delivery over SMTP using
// github.com/wneessen/go-mail. Credentials are validated at
// construction time: a worker with a broken mail configuration fails on
// startup instead of at the first send.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"

	"newsdigest/internal/resilience/retry"
	"newsdigest/internal/usecase/digest"
)

// Config holds the SMTP transport configuration.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string

	// From is the sender address; defaults to Username.
	From string
}

// Sentinel errors for mailer construction.
var (
	ErrMissingHost        = errors.New("SMTP_HOST not set")
	ErrMissingCredentials = errors.New("SMTP_USER or SMTP_PASS not set")
)

// ConfigFromEnv reads the SMTP configuration from environment variables.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Host:     os.Getenv("SMTP_HOST"),
		Username: os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASS"),
		From:     os.Getenv("SMTP_FROM"),
		Port:     587,
	}
	if port := os.Getenv("SMTP_PORT"); port != "" {
		if val, err := strconv.Atoi(port); err == nil && val > 0 {
			cfg.Port = val
		}
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return cfg, cfg.validate()
}

func (cfg Config) validate() error {
	if cfg.Host == "" {
		return ErrMissingHost
	}
	if cfg.Username == "" || cfg.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}

// SMTPMailer sends digest emails. It implements digest.Mailer.
type SMTPMailer struct {
	client   *mail.Client
	from     string
	retryCfg retry.Config
}

// NewSMTPMailer creates a mailer. Invalid configuration is rejected
// here, before any send is attempted.
func NewSMTPMailer(cfg Config) (*SMTPMailer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &SMTPMailer{
		client:   client,
		from:     cfg.From,
		retryCfg: retry.SMTPConfig(),
	}, nil
}

// Send delivers one rendered digest message. Transient transport
// failures are retried with backoff; the returned Delivery describes
// the accepted recipient and the generated message ID.
func (m *SMTPMailer) Send(ctx context.Context, msg digest.Message) (digest.Delivery, error) {
	mailMsg := mail.NewMsg()
	if err := mailMsg.From(m.from); err != nil {
		return digest.Delivery{}, fmt.Errorf("set sender: %w", err)
	}
	if err := mailMsg.To(msg.To); err != nil {
		return digest.Delivery{}, fmt.Errorf("set recipient: %w", err)
	}

	messageID := uuid.NewString()
	mailMsg.SetMessageIDWithValue(messageID)
	mailMsg.Subject(msg.Subject)
	mailMsg.SetBodyString(mail.TypeTextPlain, msg.Text)
	mailMsg.AddAlternativeString(mail.TypeTextHTML, msg.HTML)

	err := retry.WithBackoff(ctx, m.retryCfg, func() error {
		return m.client.DialAndSendWithContext(ctx, mailMsg)
	})
	if err != nil {
		return digest.Delivery{}, fmt.Errorf("send email: %w", err)
	}

	return digest.Delivery{
		Accepted:  []string{msg.To},
		MessageID: fmt.Sprintf("<%s>", messageID),
	}, nil
}
