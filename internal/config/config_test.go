package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	"SERVER_ADDRESS", "USER_API_URL", "IMAGE_API_URL", "USER_API_SEED",
	"UPSTREAM_TIMEOUT", "DEFAULT_COUNT", "MIN_COUNT", "MAX_COUNT",
	"ENABLE_HTTPS", "TLS_CERT_FILE", "TLS_KEY_FILE", "LOG_LEVEL",
	"ENABLE_PPROF", "CONFIG",
}

// clearEnv убирает переменные окружения конфигурации на время теста
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range configEnvVars {
		if value, ok := os.LookupEnv(name); ok {
			require.NoError(t, os.Unsetenv(name))
			t.Cleanup(func() { os.Setenv(name, value) })
		}
	}
}

func TestConfigPriority(t *testing.T) {
	tests := []struct {
		name           string
		env            map[string]string
		args           []string
		wantServerAddr string
		wantSeed       string
		wantTimeout    time.Duration
	}{
		{
			name:           "Default values",
			args:           nil,
			wantServerAddr: ":8080",
			wantSeed:       "aimopark2025",
			wantTimeout:    5 * time.Second,
		},
		{
			name:           "Environment variables override defaults",
			env:            map[string]string{"SERVER_ADDRESS": ":9090", "USER_API_SEED": "env-seed", "UPSTREAM_TIMEOUT": "2s"},
			wantServerAddr: ":9090",
			wantSeed:       "env-seed",
			wantTimeout:    2 * time.Second,
		},
		{
			name:           "Command line flags override defaults",
			args:           []string{"-a", ":7070", "-s", "flag-seed", "-t", "3s"},
			wantServerAddr: ":7070",
			wantSeed:       "flag-seed",
			wantTimeout:    3 * time.Second,
		},
		{
			name:           "Environment variables override command line flags",
			env:            map[string]string{"SERVER_ADDRESS": ":9090", "USER_API_SEED": "env-seed"},
			args:           []string{"-a", ":7070", "-s", "flag-seed"},
			wantServerAddr: ":9090",
			wantSeed:       "env-seed",
			wantTimeout:    5 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load(tt.args)
			require.NoError(t, err)

			assert.Equal(t, tt.wantServerAddr, cfg.ServerAddress)
			assert.Equal(t, tt.wantSeed, cfg.Seed)
			assert.Equal(t, tt.wantTimeout, cfg.UpstreamTimeout)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultUserAPIURL, cfg.UserAPIURL)
	assert.Equal(t, DefaultImageAPIURL, cfg.ImageAPIURL)
	assert.Equal(t, 10, cfg.DefaultCount)
	assert.Equal(t, 1, cfg.MinCount)
	assert.Equal(t, 1000, cfg.MaxCount)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.EnablePprof)
	assert.False(t, cfg.IsHTTPSEnabled())
}

func TestLoad_CountRangeFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEFAULT_COUNT", "20")
	t.Setenv("MAX_COUNT", "50")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.DefaultCount)
	assert.Equal(t, 50, cfg.MaxCount)
}

func TestLoad_InvalidFlag(t *testing.T) {
	clearEnv(t)

	_, err := Load([]string{"-unknown"})
	assert.Error(t, err)
}

func TestLoad_InvalidRangeFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEFAULT_COUNT", "2000")

	_, err := Load(nil)
	assert.ErrorIs(t, err, ErrInvalidCountRange)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr error
	}{
		{
			name:   "Defaults are valid",
			modify: func(c *Config) {},
		},
		{
			name:    "Min below one",
			modify:  func(c *Config) { c.MinCount = 0 },
			wantErr: ErrInvalidCountRange,
		},
		{
			name:    "Max below min",
			modify:  func(c *Config) { c.MinCount, c.MaxCount = 5, 4 },
			wantErr: ErrInvalidCountRange,
		},
		{
			name:    "Default outside range",
			modify:  func(c *Config) { c.DefaultCount = 0 },
			wantErr: ErrInvalidCountRange,
		},
		{
			name:    "Zero timeout",
			modify:  func(c *Config) { c.UpstreamTimeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "Empty image URL",
			modify:  func(c *Config) { c.ImageAPIURL = " " },
			wantErr: ErrEmptyUpstreamURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHTTPSConfig(t *testing.T) {
	tests := []struct {
		name        string
		enableHTTPS string
		expected    bool
	}{
		{name: "HTTPS disabled empty string", enableHTTPS: "", expected: false},
		{name: "HTTPS enabled with true", enableHTTPS: "true", expected: true},
		{name: "HTTPS enabled with any value", enableHTTPS: "yes", expected: true},
		{name: "HTTPS explicitly disabled", enableHTTPS: "false", expected: false},
		{name: "HTTPS disabled with zero", enableHTTPS: "0", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EnableHTTPS: tt.enableHTTPS}
			assert.Equal(t, tt.expected, cfg.IsHTTPSEnabled())
		})
	}
}

func TestHTTPSConfigFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENABLE_HTTPS", "true")
	t.Setenv("TLS_CERT_FILE", filepath.Join("certs", "api.crt"))

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.True(t, cfg.IsHTTPSEnabled())
	assert.Equal(t, filepath.Join("certs", "api.crt"), cfg.TLSCertFile)
	assert.Equal(t, "server.key", cfg.TLSKeyFile)
}
