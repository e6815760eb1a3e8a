package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "3002", cfg.Server.Port)
	assert.Equal(t, "https://www.alphavantage.co/query", cfg.AlphaVantage.BaseURL)
	assert.Equal(t, "demo", cfg.AlphaVantage.APIKey)
	assert.Equal(t, 5*time.Second, cfg.AlphaVantage.Timeout)
	assert.Equal(t, "grok-2-latest", cfg.XAI.Model)
	assert.InDelta(t, 0.7, cfg.XAI.Temperature, 1e-9)
	assert.Equal(t, 100, cfg.XAI.Test.MaxTokens)
	assert.Equal(t, 500, cfg.XAI.News.MaxTokens)
	assert.Equal(t, 1000, cfg.XAI.Research.MaxTokens)
	assert.Equal(t, 10*time.Second, cfg.XAI.Test.Timeout)
	assert.Equal(t, 20*time.Second, cfg.XAI.News.Timeout)
	assert.Equal(t, 30*time.Second, cfg.XAI.Research.Timeout)
	assert.True(t, cfg.Fallback.UseMockData)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "8081"
alphaVantage:
  timeout: 2s
fallback:
  useMockData: false
batch:
  concurrency: 1
logging:
  level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.AlphaVantage.Timeout)
	assert.False(t, cfg.Fallback.UseMockData)
	assert.Equal(t, 1, cfg.Batch.Concurrency)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_EnvironmentKeys(t *testing.T) {
	t.Setenv("ALPHA_VANTAGE_API_KEY", "av-key")
	t.Setenv("XAI_API_KEY", "xai-key")
	t.Setenv("PORT", "9090")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "av-key", cfg.AlphaVantage.APIKey)
	assert.Equal(t, "xai-key", cfg.XAI.APIKey)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown log level", body: "logging:\n  level: verbose\n"},
		{name: "zero concurrency", body: "batch:\n  concurrency: 0\n"},
		{name: "bad upstream url", body: "alphaVantage:\n  baseURL: not a url\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "server: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
