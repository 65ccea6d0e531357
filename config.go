package goStepAuth

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by goStepAuth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Token   TokenConfig
	Steps   []string
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls the signed continuation token. Signing is fixed to
// HS256; tokens carrying any other algorithm are rejected at verification.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	Leeway time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by goStepAuth APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by goStepAuth APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

const (
	defaultTokenTTL   = 8 * time.Hour
	minTokenSecretLen = 32
)

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			TTL: defaultTokenTTL,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg

	if cfg.Token.Secret != nil {
		out.Token.Secret = make([]byte, len(cfg.Token.Secret))
		copy(out.Token.Secret, cfg.Token.Secret)
	}
	if cfg.Steps != nil {
		out.Steps = make([]string, len(cfg.Steps))
		copy(out.Steps, cfg.Steps)
	}

	return out
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	if len(c.Token.Secret) < minTokenSecretLen {
		return errors.New("token secret must be at least 32 bytes")
	}
	if c.Token.TTL <= 0 {
		return errors.New("token TTL must be positive")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("invalid token leeway configuration")
	}

	if len(c.Steps) == 0 {
		return errors.New("at least one authentication step required")
	}
	seen := make(map[string]struct{}, len(c.Steps))
	for _, step := range c.Steps {
		if strings.TrimSpace(step) == "" {
			return errors.New("step names must be non-empty")
		}
		if _, dup := seen[step]; dup {
			return errors.New("step names must be unique")
		}
		seen[step] = struct{}{}
	}

	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("audit buffer size must be non-negative")
	}

	return nil
}
