package anthropic

import (
	"testing"

	"github.com/aschepis/backscratcher/docblock/llm"
	"github.com/rs/zerolog"
)

func TestToMessageParams(t *testing.T) {
	msgs := []llm.Message{
		llm.NewTextMessage(llm.RoleUser, "hello"),
		llm.NewTextMessage(llm.RoleAssistant, "hi"),
	}

	params := ToMessageParams(msgs)
	if len(params) != 2 {
		t.Fatalf("Expected 2 params, got %d", len(params))
	}
	if string(params[0].Role) != "user" {
		t.Errorf("Expected user role, got %q", params[0].Role)
	}
	if string(params[1].Role) != "assistant" {
		t.Errorf("Expected assistant role, got %q", params[1].Role)
	}
	if len(params[0].Content) != 1 || params[0].Content[0].OfText == nil {
		t.Fatal("Expected a single text block")
	}
	if params[0].Content[0].OfText.Text != "hello" {
		t.Errorf("Expected text 'hello', got %q", params[0].Content[0].OfText.Text)
	}
}

func TestNewAnthropicClient_RequiresKey(t *testing.T) {
	if _, err := NewAnthropicClient("", zerolog.Nop()); err == nil {
		t.Error("Expected error for empty API key")
	}
	if _, err := NewAnthropicClient("key", zerolog.Nop()); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
