// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers .env, an optional YAML file and PRICEWISE_ env vars on top.
// - Errors are wrapped with this package's sentinels.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultJWTSecret is the development signing secret. Deployments must override it.
const DefaultJWTSecret = "dev-secret-change-me"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatabaseDSN selects the store: sqlite://file.db, mysql://..., postgres://...
	DatabaseDSN string `koanf:"database_dsn"`

	// SlowQueryMS marks queries slower than this as slow in the log.
	SlowQueryMS int `koanf:"slow_query_ms"`

	// JWTSecret signs access tokens.
	JWTSecret string `koanf:"jwt_secret"`

	// TokenTTLMinutes is the lifetime of access tokens.
	TokenTTLMinutes int `koanf:"token_ttl_minutes"`

	// BcryptCost is the password hashing work factor.
	BcryptCost int `koanf:"bcrypt_cost"`

	// RatingWeight and PopularityDivisor shape the MB score.
	RatingWeight      float64 `koanf:"rating_weight"`
	PopularityDivisor float64 `koanf:"popularity_divisor"`

	// RedisAddr enables the shared login limiter when set.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`

	// LoginRatePerSec and LoginBurst bound login attempts per client.
	LoginRatePerSec float64 `koanf:"login_rate_per_sec"`
	LoginBurst      int     `koanf:"login_burst"`

	// ResetCodeTTLMinutes is how long password reset codes stay valid.
	ResetCodeTTLMinutes int `koanf:"reset_code_ttl_minutes"`

	// SMTP relay for password reset mail. Codes are logged when SMTPHost is empty.
	SMTPHost string `koanf:"smtp_host"`
	SMTPPort int    `koanf:"smtp_port"`
	SMTPUser string `koanf:"smtp_user"`
	SMTPPass string `koanf:"smtp_pass"`
	SMTPFrom string `koanf:"smtp_from"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		DatabaseDSN:         "sqlite://pricewise.db",
		SlowQueryMS:         200,
		JWTSecret:           DefaultJWTSecret,
		TokenTTLMinutes:     120,
		BcryptCost:          10,
		RatingWeight:        10,
		PopularityDivisor:   10,
		LoginRatePerSec:     1,
		LoginBurst:          5,
		ResetCodeTTLMinutes: 10,
		SMTPPort:            587,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DatabaseDSN) == "":
		return fmt.Errorf("%w: database_dsn must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.JWTSecret) == "":
		return fmt.Errorf("%w: jwt_secret must not be empty", ErrInvalidConfig)
	case c.TokenTTLMinutes <= 0:
		return fmt.Errorf("%w: token_ttl_minutes must be positive", ErrInvalidConfig)
	case c.RatingWeight <= 0:
		return fmt.Errorf("%w: rating_weight must be positive", ErrInvalidConfig)
	case c.PopularityDivisor <= 0:
		return fmt.Errorf("%w: popularity_divisor must be positive", ErrInvalidConfig)
	case c.ResetCodeTTLMinutes <= 0:
		return fmt.Errorf("%w: reset_code_ttl_minutes must be positive", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	return nil
}

// TokenTTL returns the access token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// ResetCodeTTL returns the password reset code lifetime.
func (c *Config) ResetCodeTTL() time.Duration {
	return time.Duration(c.ResetCodeTTLMinutes) * time.Minute
}

// SlowQueryThreshold returns the slow query cut-off.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryMS) * time.Millisecond
}
