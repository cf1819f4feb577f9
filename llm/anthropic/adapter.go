package anthropic

import (
	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/aschepis/backscratcher/docblock/llm"
	"github.com/samber/lo"
)

// ToMessageParam converts an llm.Message to an Anthropic MessageParam.
// System messages are carried separately by the request and map to user here.
func ToMessageParam(msg llm.Message) anthropic.MessageParam {
	blocks := lo.FilterMap(msg.Content, func(block llm.ContentBlock, _ int) (anthropic.ContentBlockParamUnion, bool) {
		if block.Type != llm.ContentBlockTypeText {
			return anthropic.ContentBlockParamUnion{}, false
		}
		return anthropic.NewTextBlock(block.Text), true
	})

	if msg.Role == llm.RoleAssistant {
		return anthropic.NewAssistantMessage(blocks...)
	}
	return anthropic.NewUserMessage(blocks...)
}

// ToMessageParams converts a slice of llm.Messages to Anthropic MessageParams.
func ToMessageParams(msgs []llm.Message) []anthropic.MessageParam {
	return lo.Map(msgs, func(msg llm.Message, _ int) anthropic.MessageParam {
		return ToMessageParam(msg)
	})
}
