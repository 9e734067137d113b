// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the serve command needs.
type Config struct {
	// Env is the deployment environment, "development" or "production".
	Env string `env:"PREPDESK_ENV" envDefault:"production"`

	// Addr is the listen address for the HTTP server.
	Addr string `env:"PREPDESK_ADDR" envDefault:":8080"`

	// DB is the database DSN. A postgres:// URL selects Postgres,
	// anything else is a SQLite file path. Empty means the default
	// per-user SQLite location.
	DB string `env:"PREPDESK_DB"`

	// DefaultUser is the user id attached to sessions when requests
	// carry no identity. Single-user deployments leave this as is.
	DefaultUser string `env:"PREPDESK_DEFAULT_USER" envDefault:"local"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("environment variables are invalid: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field values beyond what parsing enforces.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("PREPDESK_ADDR cannot be empty")
	}
	if !strings.Contains(c.Addr, ":") {
		return fmt.Errorf("PREPDESK_ADDR must be host:port or :port, got %q", c.Addr)
	}
	switch c.Env {
	case "development", "production":
	default:
		return fmt.Errorf("PREPDESK_ENV must be development or production, got %q", c.Env)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
