package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/userreg/internal/flagx"
	"github.com/dmitrijs2005/userreg/internal/timex"
)

// JsonConfig mirrors Config for unmarshalling. Fields left out of the file
// keep their current values.
type JsonConfig struct {
	EndpointAddr          *string         `json:"endpoint_addr"`
	DatabaseDSN           *string         `json:"database_dsn"`
	SecretKey             *string         `json:"secret_key"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration"`
	EmailPattern          *string         `json:"email_pattern"`
	EmailMessage          *string         `json:"email_message"`
	PasswordPattern       *string         `json:"password_pattern"`
	PasswordMessage       *string         `json:"password_message"`
	ShutdownTimeout       *timex.Duration `json:"shutdown_timeout"`
	LogLevel              *string         `json:"log_level"`
	AllowedOrigins        []string        `json:"allowed_origins"`
}

// parseJson overlays the JSON file named by -c/-config, if any.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.EmailPattern, c.EmailPattern)
	setString(&config.EmailMessage, c.EmailMessage)
	setString(&config.PasswordPattern, c.PasswordPattern)
	setString(&config.PasswordMessage, c.PasswordMessage)
	setString(&config.LogLevel, c.LogLevel)
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}

	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
