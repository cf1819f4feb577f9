package openai

import (
	"github.com/aschepis/backscratcher/docblock/llm"
	openai "github.com/sashabaranov/go-openai"
	"github.com/samber/lo"
)

// ToOpenAIMessages converts llm messages to chat completion messages,
// prepending the system prompt when present.
func ToOpenAIMessages(system string, msgs []llm.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs)+1)
	if system != "" {
		out = append(out, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	return append(out, lo.Map(msgs, func(msg llm.Message, _ int) openai.ChatCompletionMessage {
		return openai.ChatCompletionMessage{
			Role:    toOpenAIRole(msg.Role),
			Content: msg.TextOf(),
		}
	})...)
}

func toOpenAIRole(role llm.MessageRole) string {
	switch role {
	case llm.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	case llm.RoleSystem:
		return openai.ChatMessageRoleSystem
	default:
		return openai.ChatMessageRoleUser
	}
}
