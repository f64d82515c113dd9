package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by parseEnv.
const (
	EnvEndpointAddr    = "USERREG_ADDR"
	EnvDatabaseDSN     = "USERREG_DATABASE_DSN"
	EnvSecretKey       = "USERREG_SECRET_KEY"
	EnvTokenValidity   = "USERREG_TOKEN_VALIDITY"
	EnvEmailPattern    = "USERREG_EMAIL_PATTERN"
	EnvEmailMessage    = "USERREG_EMAIL_MESSAGE"
	EnvPasswordPattern = "USERREG_PASSWORD_PATTERN"
	EnvPasswordMessage = "USERREG_PASSWORD_MESSAGE"
	EnvShutdownTimeout = "USERREG_SHUTDOWN_TIMEOUT"
	EnvLogLevel        = "USERREG_LOG_LEVEL"
	EnvAllowedOrigins  = "USERREG_ALLOWED_ORIGINS"
)

// parseEnv loads dotenv (a missing file is fine; variables already set in
// the process win) and overlays every USERREG_* variable that is set.
func parseEnv(config *Config, dotenv string) error {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", dotenv, err)
		}
	}

	lookupString(EnvEndpointAddr, &config.EndpointAddr)
	lookupString(EnvDatabaseDSN, &config.DatabaseDSN)
	lookupString(EnvSecretKey, &config.SecretKey)
	lookupString(EnvEmailPattern, &config.EmailPattern)
	lookupString(EnvEmailMessage, &config.EmailMessage)
	lookupString(EnvPasswordPattern, &config.PasswordPattern)
	lookupString(EnvPasswordMessage, &config.PasswordMessage)
	lookupString(EnvLogLevel, &config.LogLevel)

	if v, ok := os.LookupEnv(EnvAllowedOrigins); ok {
		config.AllowedOrigins = splitList(v)
	}

	if err := lookupDuration(EnvTokenValidity, &config.TokenValidityDuration); err != nil {
		return err
	}
	return lookupDuration(EnvShutdownTimeout, &config.ShutdownTimeout)
}

func lookupString(name string, dst *string) {
	if v, ok := os.LookupEnv(name); ok {
		*dst = v
	}
}

func lookupDuration(name string, dst *time.Duration) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}

// splitList parses a comma-separated list, dropping blank items.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
