package config

import "os"

// envBinding maps environment variables onto a config field. The first
// non-empty variable wins.
type envBinding struct {
	names []string
	field func(*Config) *string
}

var envBindings = []envBinding{
	{[]string{"ANTHROPIC_API_KEY", "CLAUDE_API_KEY"}, func(c *Config) *string { return &c.Anthropic.APIKey }},
	{[]string{"OPENAI_API_KEY"}, func(c *Config) *string { return &c.OpenAI.APIKey }},
	{[]string{"OPENAI_BASE_URL"}, func(c *Config) *string { return &c.OpenAI.BaseURL }},
	{[]string{"OPENAI_MODEL"}, func(c *Config) *string { return &c.OpenAI.Model }},
	{[]string{"OPENAI_ORG_ID"}, func(c *Config) *string { return &c.OpenAI.Organization }},
	{[]string{"OLLAMA_HOST"}, func(c *Config) *string { return &c.Ollama.Host }},
	{[]string{"OLLAMA_MODEL"}, func(c *Config) *string { return &c.Ollama.Model }},
	{[]string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}, func(c *Config) *string { return &c.Gemini.APIKey }},
	{[]string{"GEMINI_MODEL"}, func(c *Config) *string { return &c.Gemini.Model }},
	{[]string{"DOCBLOCK_LOCATOR"}, func(c *Config) *string { return &c.Locator }},
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) {
	for _, b := range envBindings {
		if v := firstEnv(b.names...); v != "" {
			*b.field(cfg) = v
		}
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
