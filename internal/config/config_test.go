package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "https://economia.awesomeapi.com.br", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 3, cfg.Retry.Quotes.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Retry.Validator.BaseDelay)
	assert.Equal(t, "Local", cfg.History.Timezone)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "currency_quote", cfg.Metrics.Namespace)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
api:
  base_url: http://localhost:8081
  timeout: 2s
retry:
  quotes:
    max_attempts: 5
    base_delay: 250ms
history:
  timezone: America/Sao_Paulo
logging:
  level: debug
metrics:
  enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Run("File values with defaults", func(t *testing.T) {
		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "http://localhost:8081", cfg.API.BaseURL)
		assert.Equal(t, 2*time.Second, cfg.API.Timeout)
		assert.Equal(t, 5, cfg.Retry.Quotes.MaxAttempts)
		assert.Equal(t, 250*time.Millisecond, cfg.Retry.Quotes.BaseDelay)
		assert.Equal(t, 3, cfg.Retry.Validator.MaxAttempts)
		assert.Equal(t, "America/Sao_Paulo", cfg.History.Timezone)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, ":9090", cfg.Metrics.Addr)

		loc, err := cfg.Location()
		require.NoError(t, err)
		assert.Equal(t, "America/Sao_Paulo", loc.String())
	})

	t.Run("Environment overrides file", func(t *testing.T) {
		t.Setenv("CURRENCY_QUOTE_BASE_URL", "http://override")
		t.Setenv("CURRENCY_QUOTE_RETRY_ATTEMPTS", "7")
		t.Setenv("CURRENCY_QUOTE_TIMEOUT", "not-a-duration")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "http://override", cfg.API.BaseURL)
		assert.Equal(t, 7, cfg.Retry.Quotes.MaxAttempts)
		assert.Equal(t, 2*time.Second, cfg.API.Timeout)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "file does not exist")
	})

	t.Run("Invalid YAML", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("api: [unclosed"), 0o600))
		_, err := LoadConfig(bad)
		assert.Error(t, err)
	})

	t.Run("Invalid timezone", func(t *testing.T) {
		t.Setenv("CURRENCY_QUOTE_TIMEZONE", "Mars/Olympus_Mons")
		_, err := LoadConfig("")
		assert.Error(t, err)
	})

	t.Run("No file", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, Default().API, cfg.API)
	})
}

func TestApplyDefaults(t *testing.T) {
	t.Run("Fills zero fields only", func(t *testing.T) {
		cfg := &Config{
			API:   APIConfig{BaseURL: "http://localhost:8080"},
			Retry: RetryConfig{Validator: RetryPolicy{BaseDelay: time.Millisecond}},
		}

		ApplyDefaults(cfg)

		assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
		assert.Equal(t, 10*time.Second, cfg.API.Timeout)
		assert.Equal(t, 3, cfg.Retry.Quotes.MaxAttempts)
		assert.Equal(t, time.Second, cfg.Retry.Quotes.BaseDelay)
		assert.Equal(t, 3, cfg.Retry.Validator.MaxAttempts)
		assert.Equal(t, time.Millisecond, cfg.Retry.Validator.BaseDelay)
		assert.Equal(t, "Local", cfg.History.Timezone)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, "currency_quote", cfg.Metrics.Namespace)
		assert.Equal(t, ":9090", cfg.Metrics.Addr)
	})

	t.Run("Clamps retry attempts", func(t *testing.T) {
		cfg := &Config{Retry: RetryConfig{Quotes: RetryPolicy{MaxAttempts: 1000000}}}

		ApplyDefaults(cfg)

		assert.Equal(t, MaxRetryAttempts, cfg.Retry.Quotes.MaxAttempts)
	})

	t.Run("Clamps retry attempts from the environment", func(t *testing.T) {
		t.Setenv("CURRENCY_QUOTE_RETRY_ATTEMPTS", "1000000")

		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, MaxRetryAttempts, cfg.Retry.Quotes.MaxAttempts)
	})
}
