// Package config loads the client configuration from a YAML file overlaid
// with environment variables. Environment always wins, so credentials can be
// injected without touching files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables understood by Load. NESTEGG_API_TOKEN is the usual
// way to supply credentials.
const (
	EnvConfigFile = "NESTEGG_CONFIG"
	EnvBaseURL    = "NESTEGG_API_BASE_URL"
	EnvToken      = "NESTEGG_API_TOKEN"
	EnvTimeout    = "NESTEGG_API_TIMEOUT"
	EnvRetries    = "NESTEGG_API_RETRIES"
	EnvLogLevel   = "NESTEGG_LOG_LEVEL"
	EnvGeminiKey  = "GEMINI_API_KEY"
)

// API configures the connection to the Nestegg backend.
type API struct {
	BaseURL    string        `yaml:"baseUrl"`
	Token      string        `yaml:"token"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"maxRetries"`
}

// Insights configures the AI-insight source. With a Gemini key present the
// client generates explanations and tips locally instead of calling the
// backend's insight endpoints.
type Insights struct {
	GeminiAPIKey string `yaml:"geminiApiKey"`
}

// Config is the full client configuration.
type Config struct {
	API      API      `yaml:"api"`
	Insights Insights `yaml:"insights"`
	LogLevel string   `yaml:"logLevel"`

	// path remembers where the file layer came from, for the watcher.
	path string
}

// Default returns the configuration used when no file and no environment are
// present.
func Default() Config {
	return Config{
		API: API{
			BaseURL:    "https://api.nestegg.app",
			Timeout:    10 * time.Second,
			MaxRetries: 2,
		},
		LogLevel: "info",
	}
}

// Load builds the configuration: defaults, then the YAML file at path (or
// $NESTEGG_CONFIG when path is empty; a missing file is not an error), then
// environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults plus environment carry the day.
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
			cfg.path = path
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Path returns the config file the file layer was read from, empty when only
// defaults and environment were used.
func (c Config) Path() string {
	return c.path
}

// Validate rejects configurations that cannot possibly work.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.baseUrl is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("api.maxRetries cannot be negative, got %d", c.API.MaxRetries)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logLevel must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		cfg.API.Token = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.API.Timeout = d
		}
	}
	if v := os.Getenv(EnvRetries); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.API.MaxRetries = n
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvGeminiKey); v != "" {
		cfg.Insights.GeminiAPIKey = v
	}
}
