package llm

import (
	"fmt"
	"sync"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

// Default models used when a preference does not name one.
const (
	DefaultAnthropicModel = "claude-haiku-4-5"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultGeminiModel    = "gemini-2.0-flash"
)

// LLMPreference represents a single provider/model preference.
type LLMPreference struct {
	Provider    string
	Model       string
	Temperature *float64
}

// ClientKey uniquely identifies an LLM client configuration.
type ClientKey struct {
	Provider     string
	Model        string
	APIKey       string // For credential-based providers
	Host         string // For Ollama
	BaseURL      string // For OpenAI
	Organization string // For OpenAI
	Temperature  *float64
}

// ProviderConfig holds the already-resolved provider settings.
// Environment lookups happen in the config package, not here.
type ProviderConfig struct {
	AnthropicAPIKey string
	OllamaHost      string
	OllamaModel     string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string
	OpenAIOrg       string
	GeminiAPIKey    string
	GeminiModel     string
}

// ProviderRegistry manages LLM provider selection and configuration resolution.
type ProviderRegistry struct {
	enabled []string        // enabled providers, in configured order
	lookup  map[string]bool // set view of enabled
	mu      sync.RWMutex
	config  *ProviderConfig
}

// NewProviderRegistry creates a new ProviderRegistry with the given config and enabled providers.
func NewProviderRegistry(providerConfig *ProviderConfig, enabledProviders []string) *ProviderRegistry {
	if providerConfig == nil {
		providerConfig = &ProviderConfig{}
	}
	lookup := make(map[string]bool, len(enabledProviders))
	enabled := make([]string, 0, len(enabledProviders))
	for _, p := range enabledProviders {
		if lookup[p] {
			continue
		}
		lookup[p] = true
		enabled = append(enabled, p)
	}

	return &ProviderRegistry{
		enabled: enabled,
		lookup:  lookup,
		config:  providerConfig,
	}
}

// IsProviderEnabled checks if a provider is in the enabled providers list.
func (r *ProviderRegistry) IsProviderEnabled(provider string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup[provider]
}

// IsProviderConfigured checks if a provider has the required configuration (API keys, hosts, etc.).
func (r *ProviderRegistry) IsProviderConfigured(provider string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isProviderConfiguredUnlocked(provider)
}

// Resolve returns a ClientKey for the first preference whose provider is
// both enabled and configured. With no preferences, the first enabled
// provider is used with its default model.
func (r *ProviderRegistry) Resolve(prefs []LLMPreference) (*ClientKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(prefs) > 0 {
		var attempted []string
		for _, pref := range prefs {
			attempted = append(attempted, pref.Provider)
			if !r.lookup[pref.Provider] || !r.isProviderConfiguredUnlocked(pref.Provider) {
				continue
			}
			key, err := r.resolveProviderConfig(pref.Provider, pref.Model)
			if err != nil {
				continue
			}
			key.Temperature = pref.Temperature
			return key, nil
		}
		return nil, fmt.Errorf("no available provider from preferences %v (enabled: %v)", attempted, r.enabled)
	}

	if len(r.enabled) == 0 {
		return nil, fmt.Errorf("no providers enabled")
	}

	first := r.enabled[0]
	if !r.isProviderConfiguredUnlocked(first) {
		return nil, fmt.Errorf("first enabled provider %s is not configured", first)
	}

	key, err := r.resolveProviderConfig(first, "")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config for provider %s: %w", first, err)
	}
	return key, nil
}

// isProviderConfiguredUnlocked is the unlocked version of IsProviderConfigured.
// Must be called with r.mu already locked.
func (r *ProviderRegistry) isProviderConfiguredUnlocked(provider string) bool {
	switch provider {
	case ProviderAnthropic:
		return r.config.AnthropicAPIKey != ""
	case ProviderOllama:
		// Ollama doesn't require API key, just needs host (which has a default)
		return true
	case ProviderOpenAI:
		return r.config.OpenAIAPIKey != ""
	case ProviderGemini:
		return r.config.GeminiAPIKey != ""
	default:
		return false
	}
}

// resolveProviderConfig resolves provider-specific configuration and returns a ClientKey.
func (r *ProviderRegistry) resolveProviderConfig(provider, modelOverride string) (*ClientKey, error) {
	key := &ClientKey{
		Provider: provider,
		Model:    modelOverride,
	}

	switch provider {
	case ProviderAnthropic:
		if r.config.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("anthropic API key not configured")
		}
		key.APIKey = r.config.AnthropicAPIKey
		if key.Model == "" {
			key.Model = DefaultAnthropicModel
		}

	case ProviderOllama:
		key.Host = r.config.OllamaHost
		if key.Host == "" {
			key.Host = "http://localhost:11434"
		}
		if key.Model == "" {
			key.Model = r.config.OllamaModel
		}
		if key.Model == "" {
			return nil, fmt.Errorf("ollama model not specified and no default configured")
		}

	case ProviderOpenAI:
		if r.config.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai API key not configured")
		}
		key.APIKey = r.config.OpenAIAPIKey
		key.BaseURL = r.config.OpenAIBaseURL
		key.Organization = r.config.OpenAIOrg
		if key.Model == "" {
			key.Model = r.config.OpenAIModel
		}
		if key.Model == "" {
			key.Model = DefaultOpenAIModel
		}

	case ProviderGemini:
		if r.config.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini API key not configured")
		}
		key.APIKey = r.config.GeminiAPIKey
		if key.Model == "" {
			key.Model = r.config.GeminiModel
		}
		if key.Model == "" {
			key.Model = DefaultGeminiModel
		}

	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}

	return key, nil
}
