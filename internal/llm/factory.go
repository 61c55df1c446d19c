package llm

import (
	"fmt"
	"os"

	"daypilot/internal/config"
	"daypilot/internal/logging"
)

// NewClientFromConfig creates a completion client from the loaded config.
// When no provider or API key is configured it returns the deterministic
// rules client so a chat turn always produces a reply.
func NewClientFromConfig(cfg *config.Config) (Client, error) {
	log := logging.Get(logging.CategoryLLM)

	switch cfg.LLM.Provider {
	case "anthropic":
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("anthropic provider configured without API key")
		}
		c := NewAnthropicClientWithConfig(AnthropicConfig{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLMTimeout(),
		})
		log.Info("using anthropic provider, model=%s", cfg.LLM.Model)
		return c, nil

	case "openai":
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("openai provider configured without API key")
		}
		c := NewOpenAIClientWithConfig(OpenAIConfig{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLMTimeout(),
		})
		log.Info("using openai provider, model=%s", cfg.LLM.Model)
		return c, nil

	case "rules", "":
		log.Info("no provider configured, using rules client")
		return NewRulesClient(), nil

	default:
		return nil, fmt.Errorf("unknown provider: %s (valid: anthropic, openai, rules)", cfg.LLM.Provider)
	}
}

// NewClientFromEnv creates a client from environment variables alone.
// Priority: ANTHROPIC_API_KEY > OPENAI_API_KEY > rules fallback.
func NewClientFromEnv() Client {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return NewAnthropicClient(key)
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return NewOpenAIClient(key)
	}
	return NewRulesClient()
}
