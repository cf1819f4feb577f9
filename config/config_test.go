package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aschepis/backscratcher/docblock/llm"
)

// isolate clears every variable Load reads and points HOME at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DOCBLOCK_CONFIG", "")
	for _, b := range envBindings {
		for _, name := range b.names {
			t.Setenv(name, "")
		}
	}
	return home
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Retry.BaseDelay)
	assert.Equal(t, 30*time.Second, cfg.Retry.MaxDelay)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, "scanner", cfg.Locator)
	assert.Equal(t, "hide", cfg.Visibility.Protected)
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.Host)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, `
llm_providers: [ollama]
ollama:
  model: qwen2.5-coder
retry:
  max_attempts: 5
  base_delay: 250ms
concurrency: 2
visibility:
  protected: document
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"ollama"}, cfg.LLMProviders)
	assert.Equal(t, "qwen2.5-coder", cfg.Ollama.Model)
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.Host, "unset fields keep defaults")
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.BaseDelay)
	assert.Equal(t, 30*time.Second, cfg.Retry.MaxDelay)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, "document", cfg.Visibility.Protected)
	assert.Equal(t, "hide", cfg.Visibility.Private)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "concurrency: 9\n")
	t.Setenv("DOCBLOCK_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Concurrency)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "anthropic:\n  api_key: from-file\n")
	t.Setenv("ANTHROPIC_API_KEY", "from-env")
	t.Setenv("GOOGLE_API_KEY", "google")
	t.Setenv("OLLAMA_MODEL", "llama3")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Anthropic.APIKey)
	assert.Equal(t, "google", cfg.Gemini.APIKey)
	assert.Equal(t, "llama3", cfg.Ollama.Model)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "concurrency: [\n"},
		{"unknown locator", "locator: regex\n"},
		{"unknown provider", "llm_providers: [mystery]\n"},
		{"bad policy", "visibility:\n  private: shout\n"},
		{"max below base", "retry:\n  base_delay: 10s\n  max_delay: 1s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			_, err := Load(writeConfig(t, dir, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestPreferences(t *testing.T) {
	temp := 0.3
	cfg := Defaults()
	cfg.Temperature = &temp

	prefs := cfg.Preferences()
	require.Len(t, prefs, len(cfg.LLMProviders))
	assert.Equal(t, llm.ProviderAnthropic, prefs[0].Provider)
	assert.Equal(t, &temp, prefs[0].Temperature)

	cfg.UseProvider(llm.ProviderGemini, "gemini-2.5-pro")
	prefs = cfg.Preferences()
	require.Len(t, prefs, 1)
	assert.Equal(t, llm.ProviderGemini, prefs[0].Provider)
	assert.Equal(t, "gemini-2.5-pro", prefs[0].Model)
}

func TestUseProvider_EnablesProvider(t *testing.T) {
	cfg := Defaults()
	cfg.LLMProviders = []string{llm.ProviderAnthropic}

	cfg.UseProvider(llm.ProviderOllama, "")
	assert.Contains(t, cfg.LLMProviders, llm.ProviderOllama)
}

func TestNewLLMClient(t *testing.T) {
	cfg := Defaults()
	cfg.LLMProviders = []string{llm.ProviderOllama}
	cfg.Ollama.Model = "llama3"

	client, key, err := NewLLMClient(context.Background(), &cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.Equal(t, llm.ProviderOllama, key.Provider)
	assert.Equal(t, "llama3", key.Model)
}

func TestNewLLMClient_NothingConfigured(t *testing.T) {
	cfg := Defaults()
	cfg.LLMProviders = []string{llm.ProviderAnthropic, llm.ProviderOpenAI}

	_, _, err := NewLLMClient(context.Background(), &cfg, zerolog.Nop())
	assert.Error(t, err)
}
