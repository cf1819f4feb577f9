package ollama

import (
	"github.com/aschepis/backscratcher/docblock/llm"
	"github.com/ollama/ollama/api"
	"github.com/samber/lo"
)

// ToOllamaMessages converts llm messages to Ollama chat messages,
// prepending the system prompt when present.
func ToOllamaMessages(system string, msgs []llm.Message) []api.Message {
	out := make([]api.Message, 0, len(msgs)+1)
	if system != "" {
		out = append(out, api.Message{Role: "system", Content: system})
	}
	return append(out, lo.Map(msgs, func(msg llm.Message, _ int) api.Message {
		return api.Message{
			Role:    string(msg.Role),
			Content: msg.TextOf(),
		}
	})...)
}
