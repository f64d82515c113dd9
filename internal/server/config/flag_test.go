package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected *Config
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "127.0.0.1:9090", "-d", "db", "-s", "secret", "-t", "90s", "-l", "debug"},
			expected: &Config{
				EndpointAddr:          "127.0.0.1:9090",
				DatabaseDSN:           "db",
				SecretKey:             "secret",
				TokenValidityDuration: 90 * time.Second,
				LogLevel:              "debug",
			},
		},
		{
			name: "foreign flags are ignored",
			args: []string{"-c", "conf.json", "-a", ":1", "-x", "y"},
			expected: &Config{
				EndpointAddr: ":1",
			},
		},
		{
			name:    "bad duration",
			args:    []string{"-t", "ten"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}

			err := parseFlags(config, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(config, tt.expected))
		})
	}
}

func TestLoadConfig_LayerOrder(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"endpoint_addr":           ":1111",
		"token_validity_duration": "2h",
		"log_level":               "warn",
	})
	t.Setenv(EnvEndpointAddr, ":2222")
	t.Setenv(EnvSecretKey, testSecret)

	withArgs(t, "server", "-c", path, "-a", ":3333")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":3333", cfg.EndpointAddr)
	assert.Equal(t, 2*time.Hour, cfg.TokenValidityDuration)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, testSecret, cfg.SecretKey)
	assert.NoError(t, cfg.Validate())
}
