// Package config holds all daypilot configuration, loaded from a YAML file
// with environment variable overrides for secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all daypilot configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// LLM configures the completion provider.
	LLM LLMConfig `yaml:"llm"`

	// Storage configures the SQLite entity store.
	Storage StorageConfig `yaml:"storage"`

	// Logging configures the categorized debug logger.
	Logging LoggingConfig `yaml:"logging"`

	// Digest configures weekly digest generation.
	Digest DigestConfig `yaml:"digest"`
}

// LLMConfig configures the completion provider.
type LLMConfig struct {
	Provider string `yaml:"provider"` // anthropic, openai, or rules
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// StorageConfig configures the entity store.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures debug logging.
type LoggingConfig struct {
	DebugMode bool   `yaml:"debug_mode"`
	Level     string `yaml:"level"`
}

// DigestConfig configures the weekly digest scheduler.
type DigestConfig struct {
	// CronSpec is a robfig/cron expression. Default fires Monday 08:00.
	CronSpec string `yaml:"cron_spec"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Name:    "daypilot",
		Version: "1.0.0",
		LLM: LLMConfig{
			Provider: "rules",
			Model:    "",
			Timeout:  "120s",
		},
		Storage: StorageConfig{
			DatabasePath: filepath.Join(DefaultStateDir(), "daypilot.db"),
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
		Digest: DigestConfig{
			CronSpec: "0 8 * * 1",
		},
	}
}

// DefaultStateDir returns the directory for the database, logs, and config.
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".daypilot"
	}
	return filepath.Join(home, ".daypilot")
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	return filepath.Join(DefaultStateDir(), "config.yaml")
}

// Load reads configuration from the given path, applying defaults for
// missing fields and environment overrides afterwards. A missing file is
// not an error; defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to the given path, creating directories
// as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides lets environment variables take precedence over the
// file for secrets and the database location.
// Provider key priority: ANTHROPIC > OPENAI.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.LLM.Provider = "anthropic"
		c.LLM.APIKey = key
	} else if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.Provider = "openai"
		c.LLM.APIKey = key
	}
	if model := os.Getenv("DAYPILOT_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if db := os.Getenv("DAYPILOT_DB"); db != "" {
		c.Storage.DatabasePath = db
	}
	if os.Getenv("DAYPILOT_DEBUG") == "1" {
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}
}

// LLMTimeout parses the configured LLM timeout, falling back to two minutes.
func (c *Config) LLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}
