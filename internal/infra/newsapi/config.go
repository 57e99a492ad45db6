// Package newsapi implements the upstream news provider adapter against
// the NewsAPI v2 HTTP contract. It satisfies the news.Provider interface
// and owns transport policy: timeout, rate limiting and circuit breaking.
package newsapi

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds the upstream provider configuration.
type Config struct {
	// BaseURL is the provider endpoint root, without a trailing slash.
	BaseURL string

	// APIKey is the provider credential, sent as the X-Api-Key header.
	APIKey string

	// Language restricts keyword searches (everything endpoint).
	Language string

	// Country restricts the headline stream (top-headlines endpoint).
	Country string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// RequestsPerSecond and Burst configure the client-side rate limit.
	RequestsPerSecond float64
	Burst             int
}

// ErrMissingAPIKey indicates that no provider credential was configured.
var ErrMissingAPIKey = errors.New("NEWSAPI_KEY not set")

// DefaultConfig returns the provider defaults without a credential.
func DefaultConfig() Config {
	return Config{
		BaseURL:           "https://newsapi.org",
		Language:          "en",
		Country:           "us",
		Timeout:           10 * time.Second,
		RequestsPerSecond: 2.0,
		Burst:             5,
	}
}

// ConfigFromEnv reads the provider configuration from environment
// variables. The credential is required; everything else falls back to
// defaults.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	cfg.APIKey = os.Getenv("NEWSAPI_KEY")
	if cfg.APIKey == "" {
		return Config{}, ErrMissingAPIKey
	}

	if base := os.Getenv("NEWSAPI_BASE_URL"); base != "" {
		cfg.BaseURL = base
	}
	if lang := os.Getenv("NEWSAPI_LANGUAGE"); lang != "" {
		cfg.Language = lang
	}
	if country := os.Getenv("NEWSAPI_COUNTRY"); country != "" {
		cfg.Country = country
	}
	if timeout := os.Getenv("NEWSAPI_TIMEOUT"); timeout != "" {
		if val, err := time.ParseDuration(timeout); err == nil && val > 0 {
			cfg.Timeout = val
		}
	}
	if rps := os.Getenv("NEWSAPI_REQUESTS_PER_SECOND"); rps != "" {
		if val, err := strconv.ParseFloat(rps, 64); err == nil && val > 0 {
			cfg.RequestsPerSecond = val
		}
	}

	return cfg, nil
}
