package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aschepis/backscratcher/docblock/llm"
)

func TestToOpenAIMessages(t *testing.T) {
	msgs := ToOpenAIMessages("sys", []llm.Message{
		llm.NewTextMessage(llm.RoleUser, "hello"),
		llm.NewTextMessage(llm.RoleAssistant, "hi"),
	})
	if len(msgs) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Role != "system" || msgs[0].Content != "sys" {
		t.Errorf("Unexpected system message: %+v", msgs[0])
	}
	if msgs[2].Role != "assistant" {
		t.Errorf("Expected assistant role, got %q", msgs[2].Role)
	}

	if got := ToOpenAIMessages("", nil); len(got) != 0 {
		t.Errorf("Expected no messages, got %d", len(got))
	}
}

func TestSynchronous(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "c1",
			"object": "chat.completion",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 9, "completion_tokens": 2, "total_tokens": 11}
		}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient("key", srv.URL, "gpt-4o-mini", "")
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	resp, err := client.Synchronous(context.Background(), &llm.Request{
		Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "doc")},
		Format:   llm.ResponseFormatJSON,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.Text() != "{}" {
		t.Errorf("Expected '{}', got %q", resp.Text())
	}
	if resp.Usage.InputTokens != 9 {
		t.Errorf("Expected 9 input tokens, got %d", resp.Usage.InputTokens)
	}
	if body["model"] != "gpt-4o-mini" {
		t.Errorf("Expected default model to be used, got %v", body["model"])
	}
	if _, ok := body["response_format"]; !ok {
		t.Error("Expected response_format to be set for JSON requests")
	}
}

func TestSynchronous_RateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "Rate limit reached", "type": "requests", "code": "rate_limit_exceeded"}}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient("key", srv.URL, "gpt-4o-mini", "")
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	_, err = client.Synchronous(context.Background(), &llm.Request{
		Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "doc")},
	})
	if !llm.IsRateLimitError(err) {
		t.Fatalf("Expected rate limit error, got %v", err)
	}
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIClient("", "", "", ""); err == nil {
		t.Error("Expected error for empty API key")
	}
}
