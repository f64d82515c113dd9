package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv(t *testing.T) {
	t.Setenv(EnvEndpointAddr, ":7070")
	t.Setenv(EnvSecretKey, testSecret)
	t.Setenv(EnvTokenValidity, "15m")
	t.Setenv(EnvPasswordMessage, "contraseña débil")
	t.Setenv(EnvAllowedOrigins, "https://a.example, ,https://b.example")

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseEnv(cfg, ""))

	assert.Equal(t, ":7070", cfg.EndpointAddr)
	assert.Equal(t, testSecret, cfg.SecretKey)
	assert.Equal(t, 15*time.Minute, cfg.TokenValidityDuration)
	assert.Equal(t, "contraseña débil", cfg.PasswordMessage)
	assert.Equal(t, DefaultEmailPattern, cfg.EmailPattern)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func Test_parseEnv_BadDuration(t *testing.T) {
	t.Setenv(EnvShutdownTimeout, "soon")

	cfg := &Config{}
	err := parseEnv(cfg, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvShutdownTimeout)
}

func Test_parseEnv_DotenvFile(t *testing.T) {
	// register cleanup for variables the dotenv file will set
	t.Setenv(EnvDatabaseDSN, "")
	require.NoError(t, os.Unsetenv(EnvDatabaseDSN))
	t.Setenv(EnvLogLevel, "warn")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		EnvDatabaseDSN+"=postgres://from-dotenv/users\n"+EnvLogLevel+"=debug\n"), 0o600))

	cfg := &Config{}
	require.NoError(t, parseEnv(cfg, path))

	assert.Equal(t, "postgres://from-dotenv/users", cfg.DatabaseDSN)
	// process environment wins over the file
	assert.Equal(t, "warn", cfg.LogLevel)
}

func Test_parseEnv_MissingDotenvIsFine(t *testing.T) {
	cfg := &Config{}
	assert.NoError(t, parseEnv(cfg, filepath.Join(t.TempDir(), ".env")))
}
