package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "daypilot", cfg.Name)
	assert.Equal(t, "rules", cfg.LLM.Provider)
	assert.Equal(t, "0 8 * * 1", cfg.Digest.CronSpec)
	assert.NotEmpty(t, cfg.Storage.DatabasePath)
	assert.Equal(t, 120*time.Second, cfg.LLMTimeout())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Name, cfg.Name)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "config.yaml")

	cfg := DefaultConfig()
	cfg.LLM.Provider = "anthropic"
	cfg.LLM.Model = "claude-sonnet-4-20250514"
	cfg.LLM.Timeout = "30s"
	cfg.Storage.DatabasePath = "/tmp/other.db"
	cfg.Logging.DebugMode = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", loaded.LLM.Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", loaded.LLM.Model)
	assert.Equal(t, "/tmp/other.db", loaded.Storage.DatabasePath)
	assert.True(t, loaded.Logging.DebugMode)
	assert.Equal(t, 30*time.Second, loaded.LLMTimeout())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  model: gpt-4o\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	// Untouched sections keep their defaults.
	assert.Equal(t, "0 8 * * 1", cfg.Digest.CronSpec)
	assert.Equal(t, "rules", cfg.LLM.Provider)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [not a map"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("OPENAI_API_KEY", "sk-openai-test")
	t.Setenv("DAYPILOT_MODEL", "claude-opus-4-20250514")
	t.Setenv("DAYPILOT_DB", "/tmp/env.db")
	t.Setenv("DAYPILOT_DEBUG", "1")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	// Anthropic wins when both provider keys are set.
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "sk-ant-test", cfg.LLM.APIKey)
	assert.Equal(t, "claude-opus-4-20250514", cfg.LLM.Model)
	assert.Equal(t, "/tmp/env.db", cfg.Storage.DatabasePath)
	assert.True(t, cfg.Logging.DebugMode)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvOverrides_OpenAIFallback(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-openai-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-openai-test", cfg.LLM.APIKey)
}

func TestLLMTimeout_Invalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Timeout = "not a duration"
	assert.Equal(t, 120*time.Second, cfg.LLMTimeout())

	cfg.LLM.Timeout = "-5s"
	assert.Equal(t, 120*time.Second, cfg.LLMTimeout())
}
