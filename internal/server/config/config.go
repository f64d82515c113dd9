// Package config handles configuration for the registration server:
// defaults, an optional JSON file, environment variables and command-line
// flags, applied in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/userreg/internal/server/auth"
	"github.com/dmitrijs2005/userreg/internal/server/validation"
)

// Default validation rules. The password rule requires a lowercase letter,
// an uppercase letter, a digit and a symbol, at least 8 characters long.
const (
	DefaultEmailPattern    = `[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`
	DefaultEmailMessage    = "El formato del email no es válido"
	DefaultPasswordPattern = `(?=.*[a-z])(?=.*[A-Z])(?=.*\d)(?=.*[@$!%*?&#.\-_])[A-Za-z\d@$!%*?&#.\-_]{8,}`
	DefaultPasswordMessage = "La contraseña debe tener al menos 8 caracteres, una mayúscula, una minúscula, un número y un símbolo"
)

// Config holds runtime settings for the server.
//
// An empty DatabaseDSN selects the in-memory store. SecretKey has no default
// and must be supplied; Validate rejects anything shorter than
// auth.MinSecretLength bytes.
type Config struct {
	EndpointAddr          string
	DatabaseDSN           string
	SecretKey             string
	TokenValidityDuration time.Duration
	EmailPattern          string
	EmailMessage          string
	PasswordPattern       string
	PasswordMessage       string
	ShutdownTimeout       time.Duration
	LogLevel              string
	AllowedOrigins        []string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = ""
	c.TokenValidityDuration = time.Hour
	c.EmailPattern = DefaultEmailPattern
	c.EmailMessage = DefaultEmailMessage
	c.PasswordPattern = DefaultPasswordPattern
	c.PasswordMessage = DefaultPasswordMessage
	c.ShutdownTimeout = 10 * time.Second
	c.LogLevel = "info"
}

// LoadConfig builds a Config from defaults, then the JSON file named by
// -c/-config, then the environment (including a .env file in the working
// directory), then command-line flags. It does not call Validate.
func LoadConfig() (*Config, error) {
	args := os.Args[1:]

	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, ".env"); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports every setting the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if len(c.SecretKey) < auth.MinSecretLength {
		errs = append(errs, fmt.Errorf("secret key: %w (got %d bytes, need %d)",
			auth.ErrSecretTooShort, len(c.SecretKey), auth.MinSecretLength))
	}
	if c.TokenValidityDuration <= 0 {
		errs = append(errs, fmt.Errorf("token validity %s: %w", c.TokenValidityDuration, auth.ErrInvalidLifetime))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout %s must be positive", c.ShutdownTimeout))
	}
	if _, err := c.Rules(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Rules compiles the configured validation rules.
func (c *Config) Rules() (*validation.Rules, error) {
	return validation.NewRules(
		validation.RuleConfig{Pattern: c.EmailPattern, Message: c.EmailMessage},
		validation.RuleConfig{Pattern: c.PasswordPattern, Message: c.PasswordMessage},
	)
}
