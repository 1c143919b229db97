package config

import (
	"errors"
	"os"
	"strings"
)

// Config holds the application configuration.
type Config struct {
	Environment   string
	AccountsFile  string
	TransfersFile string
	LogLevel      string
	MetricsAddr   string
}

var validEnvironments = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
}

// Load loads configuration from environment variables. The file paths may
// also arrive later via command-line flags, so Load leaves them unchecked;
// call Validate once every source has been merged.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:   os.Getenv("APP_ENV"),
		AccountsFile:  os.Getenv("LEDGER_ACCOUNTS_FILE"),
		TransfersFile: os.Getenv("LEDGER_TRANSFERS_FILE"),
		LogLevel:      os.Getenv("LEDGER_LOG_LEVEL"),
		MetricsAddr:   os.Getenv("LEDGER_METRICS_ADDR"),
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if !validEnvironments[cfg.Environment] {
		return nil, errors.New("invalid APP_ENV: " + cfg.Environment)
	}

	return cfg, nil
}

// Validate checks that the configuration is complete. MetricsAddr is
// optional: when empty, no metrics listener is started.
func (c *Config) Validate() error {
	var missing []string

	if c.AccountsFile == "" {
		missing = append(missing, "LEDGER_ACCOUNTS_FILE")
	}
	if c.TransfersFile == "" {
		missing = append(missing, "LEDGER_TRANSFERS_FILE")
	}

	if len(missing) > 0 {
		return errors.New("missing required configuration: " + strings.Join(missing, ", "))
	}

	if !validEnvironments[c.Environment] {
		return errors.New("invalid APP_ENV: " + c.Environment)
	}

	return nil
}
