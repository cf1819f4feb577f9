package config

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aschepis/backscratcher/docblock/llm"
	llmanthropic "github.com/aschepis/backscratcher/docblock/llm/anthropic"
	llmgemini "github.com/aschepis/backscratcher/docblock/llm/gemini"
	llmollama "github.com/aschepis/backscratcher/docblock/llm/ollama"
	llmopenai "github.com/aschepis/backscratcher/docblock/llm/openai"
)

// NewLLMClient resolves the preferred provider and builds its client,
// wrapped in logging middleware. The returned key names the chosen model.
func NewLLMClient(ctx context.Context, cfg *Config, logger zerolog.Logger) (llm.Client, *llm.ClientKey, error) {
	registry := llm.NewProviderRegistry(cfg.ProviderConfig(), cfg.LLMProviders)
	key, err := registry.Resolve(cfg.Preferences())
	if err != nil {
		return nil, nil, err
	}

	var client llm.Client
	switch key.Provider {
	case llm.ProviderAnthropic:
		client, err = llmanthropic.NewAnthropicClient(key.APIKey, logger)
	case llm.ProviderOpenAI:
		client, err = llmopenai.NewOpenAIClient(key.APIKey, key.BaseURL, key.Model, key.Organization)
	case llm.ProviderOllama:
		client, err = llmollama.NewOllamaClient(key.Host, key.Model)
	case llm.ProviderGemini:
		client, err = llmgemini.NewGeminiClient(ctx, key.APIKey, key.Model, cfg.Gemini.BaseURL)
	default:
		return nil, nil, fmt.Errorf("unknown provider: %s", key.Provider)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s client: %w", key.Provider, err)
	}

	logger.Info().
		Str("provider", key.Provider).
		Str("model", key.Model).
		Msg("Using LLM provider")

	return llm.WrapWithMiddleware(client, llm.NewLoggingMiddleware(logger)), key, nil
}
