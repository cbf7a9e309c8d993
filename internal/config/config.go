// Package config loads client settings from an optional YAML file in the
// user config dir, overridden by PHONEBOOK_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds all runtime settings of the phonebook client.
// Precedence: built-in defaults < YAML file < environment.
type Config struct {
	// BaseURL is the phonebook service origin (scheme://host[:port]).
	BaseURL string `env:"PHONEBOOK_BASE_URL"`

	// PageSize is the default contacts-per-page limit.
	PageSize int `env:"PHONEBOOK_PAGE_SIZE"`

	// Timeout bounds every HTTP request.
	Timeout time.Duration `env:"PHONEBOOK_TIMEOUT"`

	// RequestsPerSecond caps outbound calls; zero disables the limiter.
	RequestsPerSecond float64 `env:"PHONEBOOK_RPS"`

	// Verbose enables debug logging.
	Verbose bool `env:"PHONEBOOK_VERBOSE"`
}

// fileConfig mirrors Config for the YAML file. Fields are pointers so an
// absent key keeps the default; timeout is a duration string ("30s") like the
// environment form.
type fileConfig struct {
	BaseURL           *string  `yaml:"base_url"`
	PageSize          *int     `yaml:"page_size"`
	Timeout           *string  `yaml:"timeout"`
	RequestsPerSecond *float64 `yaml:"requests_per_second"`
	Verbose           *bool    `yaml:"verbose"`
}

func (f fileConfig) apply(cfg *Config) error {
	if f.BaseURL != nil {
		cfg.BaseURL = *f.BaseURL
	}
	if f.PageSize != nil {
		cfg.PageSize = *f.PageSize
	}
	if f.Timeout != nil {
		d, err := time.ParseDuration(*f.Timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if f.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *f.RequestsPerSecond
	}
	if f.Verbose != nil {
		cfg.Verbose = *f.Verbose
	}
	return nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		BaseURL:  "http://localhost:5000",
		PageSize: 10,
		Timeout:  30 * time.Second,
	}
}

// Dir returns the per-user config directory (cookie jar, config file).
func Dir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "phonebook")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "phonebook")
}

// FilePath is where Load looks for the YAML config.
func FilePath() string { return filepath.Join(Dir(), "config.yaml") }

// CookiePath is where the persistent cookie jar lives.
func CookiePath() string { return filepath.Join(Dir(), "cookies.json") }

// Load builds the config: defaults, then the YAML file when present, then
// environment variables on top.
func Load() (*Config, error) {
	cfg := Default()

	if b, err := os.ReadFile(FilePath()); err == nil {
		var fc fileConfig
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", FilePath(), err)
		}
		if err := fc.apply(&cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", FilePath(), err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}

	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &cfg, nil
}
