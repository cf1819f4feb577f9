package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/aschepis/backscratcher/docblock/llm"
)

// AnthropicConfig represents configuration for Anthropic LLM provider.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key,omitempty"` // Anthropic API key
}

// OllamaConfig represents configuration for Ollama LLM provider.
type OllamaConfig struct {
	Host  string `yaml:"host,omitempty"`  // Ollama host (default: "http://localhost:11434")
	Model string `yaml:"model,omitempty"` // Default model name
}

// OpenAIConfig represents configuration for OpenAI LLM provider.
type OpenAIConfig struct {
	APIKey       string `yaml:"api_key,omitempty"`      // OpenAI API key
	BaseURL      string `yaml:"base_url,omitempty"`     // Custom base URL (default: official API)
	Model        string `yaml:"model,omitempty"`        // Default model name
	Organization string `yaml:"organization,omitempty"` // Organization ID
}

// GeminiConfig represents configuration for the Gemini LLM provider.
type GeminiConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	Model   string `yaml:"model,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// LLMPreference represents a single LLM provider/model preference.
// The first available provider from the list is used.
type LLMPreference struct {
	Provider    string   `yaml:"provider" validate:"required,oneof=anthropic ollama openai gemini"`
	Model       string   `yaml:"model,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
}

// RetryConfig is the backoff policy for generation requests.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts,omitempty" validate:"gte=1,lte=20"`
	BaseDelay   time.Duration `yaml:"base_delay,omitempty" validate:"gte=0"`
	MaxDelay    time.Duration `yaml:"max_delay,omitempty" validate:"gte=0"`
}

// VisibilityConfig says what happens to non-public methods.
type VisibilityConfig struct {
	Protected string `yaml:"protected,omitempty" validate:"oneof=hide report document"`
	Private   string `yaml:"private,omitempty" validate:"oneof=hide report document"`
}

// Config is the complete docblock configuration.
type Config struct {
	LLM          []LLMPreference `yaml:"llm,omitempty" validate:"dive"`
	LLMProviders []string        `yaml:"llm_providers,omitempty" validate:"min=1,dive,oneof=anthropic ollama openai gemini"`

	Anthropic AnthropicConfig `yaml:"anthropic,omitempty"`
	Ollama    OllamaConfig    `yaml:"ollama,omitempty"`
	OpenAI    OpenAIConfig    `yaml:"openai,omitempty"`
	Gemini    GeminiConfig    `yaml:"gemini,omitempty"`

	MaxTokens   int64    `yaml:"max_tokens,omitempty" validate:"gte=1"`
	Temperature *float64 `yaml:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`

	Retry       RetryConfig      `yaml:"retry,omitempty"`
	Concurrency int              `yaml:"concurrency,omitempty" validate:"gte=1,lte=64"`
	Timeout     time.Duration    `yaml:"timeout,omitempty" validate:"gte=0"`
	Locator     string           `yaml:"locator,omitempty" validate:"oneof=scanner treesitter"`
	Visibility  VisibilityConfig `yaml:"visibility,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		LLMProviders: []string{llm.ProviderAnthropic, llm.ProviderOpenAI, llm.ProviderGemini, llm.ProviderOllama},
		Ollama: OllamaConfig{
			Host: "http://localhost:11434",
		},
		MaxTokens: 1024,
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    30 * time.Second,
		},
		Concurrency: 4,
		Timeout:     5 * time.Minute,
		Locator:     "scanner",
		Visibility: VisibilityConfig{
			Protected: "hide",
			Private:   "hide",
		},
	}
}

// GetConfigPath returns the config path to use when none is given on the
// command line. Can be overridden via DOCBLOCK_CONFIG environment variable.
func GetConfigPath() string {
	if envPath := os.Getenv("DOCBLOCK_CONFIG"); envPath != "" {
		return expandPath(envPath)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./.docblock/config.yaml"
	}
	return filepath.Join(homeDir, ".docblock", "config.yaml")
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// Load reads configuration. An explicit path must exist; when path is empty
// the default location is used if present. Defaults are applied first, then
// the file, then environment overrides.
func Load(path string) (*Config, error) {
	required := path != "" || os.Getenv("DOCBLOCK_CONFIG") != ""
	if path == "" {
		path = GetConfigPath()
	}
	path = expandPath(path)

	cfg := Defaults()

	data, err := os.ReadFile(path) //#nosec 304 -- intentional file read for config
	switch {
	case err == nil:
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
		}
		if err := mergo.Merge(&cfg, fileConfig, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge config %q: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !required:
		// no config file; defaults and environment only
	default:
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Retry.MaxDelay > 0 && c.Retry.MaxDelay < c.Retry.BaseDelay {
		return fmt.Errorf("invalid config: retry.max_delay (%s) is below retry.base_delay (%s)", c.Retry.MaxDelay, c.Retry.BaseDelay)
	}
	return nil
}

// UseProvider pins generation to one provider, enabling it if necessary.
func (c *Config) UseProvider(provider, model string) {
	c.LLM = []LLMPreference{{Provider: provider, Model: model, Temperature: c.Temperature}}
	if !slices.Contains(c.LLMProviders, provider) {
		c.LLMProviders = append(c.LLMProviders, provider)
	}
}

// Preferences returns the ordered provider preferences. Without explicit
// preferences every enabled provider is tried in order with its default model.
func (c *Config) Preferences() []llm.LLMPreference {
	if len(c.LLM) == 0 {
		prefs := make([]llm.LLMPreference, 0, len(c.LLMProviders))
		for _, p := range c.LLMProviders {
			prefs = append(prefs, llm.LLMPreference{Provider: p, Temperature: c.Temperature})
		}
		return prefs
	}
	prefs := make([]llm.LLMPreference, 0, len(c.LLM))
	for _, p := range c.LLM {
		temp := p.Temperature
		if temp == nil {
			temp = c.Temperature
		}
		prefs = append(prefs, llm.LLMPreference{Provider: p.Provider, Model: p.Model, Temperature: temp})
	}
	return prefs
}

// ProviderConfig returns the resolved provider settings for the registry.
func (c *Config) ProviderConfig() *llm.ProviderConfig {
	return &llm.ProviderConfig{
		AnthropicAPIKey: c.Anthropic.APIKey,
		OllamaHost:      c.Ollama.Host,
		OllamaModel:     c.Ollama.Model,
		OpenAIAPIKey:    c.OpenAI.APIKey,
		OpenAIBaseURL:   c.OpenAI.BaseURL,
		OpenAIModel:     c.OpenAI.Model,
		OpenAIOrg:       c.OpenAI.Organization,
		GeminiAPIKey:    c.Gemini.APIKey,
		GeminiModel:     c.Gemini.Model,
	}
}
