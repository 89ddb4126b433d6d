package accounts

import (
	"errors"
	"regexp"
)

// Config defines the engine-wide configuration tree. Config values are
// intended to be set before Build and treated as immutable afterwards.
type Config struct {
	Validation   ValidationConfig
	Registration RegistrationConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
VALIDATION CONFIG
====================================
*/

// ValidationConfig controls the local, pre-call input checks. They run before
// any remote call and short-circuit with ValidationError on violation.
type ValidationConfig struct {
	// MinPasswordLength is the minimum accepted password length in bytes.
	MinPasswordLength int
	// EmailPattern overrides the default local@domain.tld shape check when
	// non-empty. It must be a valid Go regular expression.
	EmailPattern string
}

/*
====================================
REGISTRATION CONFIG
====================================
*/

// RegistrationConfig controls the registration orchestration.
type RegistrationConfig struct {
	// ProfileCollection is the document-store collection the Profile is
	// written to.
	ProfileCollection string
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking when the buffer is full.
	// Dropped counts are visible via Engine.AuditDropped.
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process metrics counters.
type MetricsConfig struct {
	Enabled bool
	// EnableLatencyHistograms additionally records the login latency
	// histogram.
	EnableLatencyHistograms bool
}

// emailPatternSource mirrors the simple local@domain.tld shape check the
// portal has always used; it is deliberately not an RFC 5322 validator.
const emailPatternSource = `^[^\s@]+@[^\s@]+\.[^\s@]+$`

func defaultConfig() Config {
	return Config{
		Validation: ValidationConfig{
			MinPasswordLength: 6,
		},
		Registration: RegistrationConfig{
			ProfileCollection: "users",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types today; the clone exists so later slice or
	// map fields cannot alias caller-held state.
	return cfg
}

// Validate checks the configuration for internally inconsistent values.
func (c *Config) Validate() error {
	if c.Validation.MinPasswordLength < 1 {
		return errors.New("Validation.MinPasswordLength must be at least 1")
	}
	if c.Validation.EmailPattern != "" {
		if _, err := regexp.Compile(c.Validation.EmailPattern); err != nil {
			return errors.New("Validation.EmailPattern is not a valid regular expression")
		}
	}
	if c.Registration.ProfileCollection == "" {
		return errors.New("Registration.ProfileCollection must not be empty")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit.BufferSize must not be negative")
	}
	return nil
}
