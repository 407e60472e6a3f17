// Package config loads client settings from a YAML file and CURRENCY_QUOTE_* environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	defaultBaseURL     = "https://economia.awesomeapi.com.br"
	defaultTimeout     = 10 * time.Second
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
	defaultTimezone    = "Local"
	defaultLogLevel    = "info"
	defaultNamespace   = "currency_quote"
	defaultMetricsAddr = ":9090"

	// MaxRetryAttempts bounds the attempts a retry policy may request
	MaxRetryAttempts = 10
)

// Config holds every client setting. Zero fields are filled in by ApplyDefaults.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Retry   RetryConfig   `yaml:"retry"`
	History HistoryConfig `yaml:"history"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// APIConfig locates the quotation API
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// RetryConfig holds one policy per endpoint family
type RetryConfig struct {
	Quotes    RetryPolicy `yaml:"quotes"`
	Validator RetryPolicy `yaml:"validator"`
}

// RetryPolicy bounds the attempts for one endpoint family; the backoff strategy is fixed per family
type RetryPolicy struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
}

// HistoryConfig controls how "today" is computed when checking reference dates
type HistoryConfig struct {
	Timezone string `yaml:"timezone"`
}

// LoggingConfig selects the log level (debug, info, warn, error, fatal)
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig controls the Prometheus endpoint served by the CLI in polling mode
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Addr      string `yaml:"addr"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// LoadConfig reads a YAML file, fills in defaults and applies environment overrides.
// An empty path skips the file.
func LoadConfig(filePath string) (*Config, error) {
	var result Config

	if filePath != "" {
		if _, err := os.Stat(filePath); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("file does not exist: %s", filePath)
			}
			return nil, fmt.Errorf("error checking file: %w", err)
		}

		yamlFile, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
		}

		if err := yaml.Unmarshal(yamlFile, &result); err != nil {
			return nil, fmt.Errorf("error decoding YAML file: %w", err)
		}
	}

	ApplyDefaults(&result)
	applyEnv(&result)
	clampRetry(&result.Retry.Quotes)
	clampRetry(&result.Retry.Validator)

	if _, err := result.Location(); err != nil {
		return nil, err
	}

	return &result, nil
}

// Location resolves the history timezone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.History.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid history timezone %q: %w", c.History.Timezone, err)
	}
	return loc, nil
}

// ApplyDefaults fills every zero field of cfg with its default value
func ApplyDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaultBaseURL
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = defaultTimeout
	}
	addRetryDefaults(&cfg.Retry.Quotes)
	addRetryDefaults(&cfg.Retry.Validator)
	if cfg.History.Timezone == "" {
		cfg.History.Timezone = defaultTimezone
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLogLevel
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = defaultNamespace
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = defaultMetricsAddr
	}
}

func addRetryDefaults(p *RetryPolicy) {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = defaultBaseDelay
	}
	clampRetry(p)
}

func clampRetry(p *RetryPolicy) {
	if p.MaxAttempts > MaxRetryAttempts {
		p.MaxAttempts = MaxRetryAttempts
	}
}

func applyEnv(cfg *Config) {
	cfg.API.BaseURL = getEnvString("CURRENCY_QUOTE_BASE_URL", cfg.API.BaseURL)
	cfg.API.Timeout = getEnvDuration("CURRENCY_QUOTE_TIMEOUT", cfg.API.Timeout)
	cfg.Retry.Quotes.MaxAttempts = getEnvInt("CURRENCY_QUOTE_RETRY_ATTEMPTS", cfg.Retry.Quotes.MaxAttempts)
	cfg.Retry.Validator.MaxAttempts = getEnvInt("CURRENCY_QUOTE_VALIDATOR_RETRY_ATTEMPTS", cfg.Retry.Validator.MaxAttempts)
	cfg.History.Timezone = getEnvString("CURRENCY_QUOTE_TIMEZONE", cfg.History.Timezone)
	cfg.Logging.Level = getEnvString("CURRENCY_QUOTE_LOG_LEVEL", cfg.Logging.Level)
	cfg.Metrics.Enabled = getEnvBool("CURRENCY_QUOTE_METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.Addr = getEnvString("CURRENCY_QUOTE_METRICS_ADDR", cfg.Metrics.Addr)
}

func getEnvString(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil || value <= 0 {
		fmt.Fprintf(os.Stderr, "Warning: invalid value for %s, using default: %d\n", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid value for %s, using default: %t\n", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid duration for %s, using default: %s\n", key, defaultValue)
		return defaultValue
	}

	return value
}
