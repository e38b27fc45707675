// Package config holds the explicit configuration passed at construction.
// Values come from code, a TOML file, or — as one documented option — the
// environment via FromEnv; nothing is read from hidden globals.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

type DebugConfig struct {
	LogRequests  bool   `toml:"log_requests" env:"CONVO_DEBUG_LOG_REQUESTS"`
	LogResponses bool   `toml:"log_responses" env:"CONVO_DEBUG_LOG_RESPONSES"`
	LogDirectory string `toml:"log_directory" env:"CONVO_DEBUG_LOG_DIRECTORY"`
}

type Config struct {
	APIKey         string      `toml:"api_key" env:"OPENAI_API_KEY"`
	BaseURL        string      `toml:"base_url" env:"OPENAI_BASE_URL"`
	Model          string      `toml:"model" env:"CONVO_MODEL"`
	TimeoutSeconds int         `toml:"timeout_seconds" env:"CONVO_TIMEOUT_SECONDS"`
	Debug          DebugConfig `toml:"debug"`
}

const DefaultModel = "gpt-5-mini"

func Default() Config {
	return Config{
		Model:          DefaultModel,
		TimeoutSeconds: 300,
		Debug: DebugConfig{
			LogRequests:  false,
			LogResponses: false,
			LogDirectory: filepath.Join(defaultDataDir(), "debug"),
		},
	}
}

// LoadOrCreate reads the config file at path, writing one with defaults
// first if it does not exist yet.
func LoadOrCreate(path string) (Config, error) {
	config := Default()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return config, err
			}

			configData, err := toml.Marshal(config)
			if err != nil {
				return config, err
			}

			if err := os.WriteFile(path, configData, 0o644); err != nil {
				return config, err
			}

			return config, nil
		}

		return config, err
	}

	configData, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	if err := toml.Unmarshal(configData, &config); err != nil {
		return config, err
	}

	return config.normalize()
}

// FromEnv overlays the config with values from a .env file (if present) and
// the process environment. This is the documented fallback for credentials;
// explicit values already set on cfg lose to the environment only where the
// environment actually defines a variable.
func FromEnv(cfg Config) (Config, error) {
	_ = godotenv.Load()

	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}

	return cfg.normalize()
}

// Timeout returns the request timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) normalize() (Config, error) {
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	c.Model = strings.TrimSpace(c.Model)

	if c.Model == "" {
		c.Model = DefaultModel
	}

	if c.TimeoutSeconds < 0 {
		return c, errors.New("timeout_seconds must not be negative")
	}

	return c, nil
}

func defaultDataDir() string {
	homeDir, _ := os.UserHomeDir()

	if homeDir == "" {
		return ".convo"
	}

	return filepath.Join(homeDir, ".convo")
}
