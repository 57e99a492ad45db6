package mailer

import (
	"errors"
	"testing"
)

func TestConfigFromEnv_missingHost(t *testing.T) {
	t.Setenv("SMTP_HOST", "")
	t.Setenv("SMTP_USER", "digest@example.com")
	t.Setenv("SMTP_PASS", "secret")

	_, err := ConfigFromEnv()
	if !errors.Is(err, ErrMissingHost) {
		t.Fatalf("want ErrMissingHost, got %v", err)
	}
}

func TestConfigFromEnv_missingCredentials(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "digest@example.com")
	t.Setenv("SMTP_PASS", "")

	_, err := ConfigFromEnv()
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("want ErrMissingCredentials, got %v", err)
	}
}

func TestConfigFromEnv_defaults(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "digest@example.com")
	t.Setenv("SMTP_PASS", "secret")
	t.Setenv("SMTP_PORT", "")
	t.Setenv("SMTP_FROM", "")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv err=%v", err)
	}
	if cfg.Port != 587 {
		t.Errorf("port = %d, want 587", cfg.Port)
	}
	if cfg.From != "digest@example.com" {
		t.Errorf("from = %q, want the username", cfg.From)
	}
}

func TestNewSMTPMailer_rejectsInvalidConfig(t *testing.T) {
	if _, err := NewSMTPMailer(Config{}); err == nil {
		t.Fatal("empty config must be rejected at construction")
	}
	if _, err := NewSMTPMailer(Config{Host: "smtp.example.com"}); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("want ErrMissingCredentials, got %v", err)
	}
}

func TestNewSMTPMailer_validConfig(t *testing.T) {
	m, err := NewSMTPMailer(Config{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "digest@example.com",
		Password: "secret",
		From:     "news@example.com",
	})
	if err != nil {
		t.Fatalf("NewSMTPMailer err=%v", err)
	}
	if m.from != "news@example.com" {
		t.Errorf("from = %q", m.from)
	}
}
