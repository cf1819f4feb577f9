package ollama

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aschepis/backscratcher/docblock/llm"
)

func TestParseHost(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"localhost:11434", "http://localhost:11434"},
		{"http://ollama:11434", "http://ollama:11434"},
		{"https://ollama.example.com", "https://ollama.example.com"},
	}
	for _, tt := range tests {
		u, err := parseHost(tt.in)
		if err != nil {
			t.Fatalf("parseHost(%q) error: %v", tt.in, err)
		}
		if u.String() != tt.want {
			t.Errorf("parseHost(%q) = %q, want %q", tt.in, u.String(), tt.want)
		}
	}
}

func TestToOllamaMessages(t *testing.T) {
	msgs := ToOllamaMessages("sys", []llm.Message{llm.NewTextMessage(llm.RoleUser, "hi")})
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != "system" || msgs[1].Role != "user" || msgs[1].Content != "hi" {
		t.Errorf("Unexpected messages: %+v", msgs)
	}
}

func TestSynchronous(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3.2:3b","message":{"role":"assistant","content":"{\"summary\":\"x\"}"},"done":true,"done_reason":"stop","prompt_eval_count":4,"eval_count":6}` + "\n"))
	}))
	defer srv.Close()

	client, err := NewOllamaClient(srv.URL, "llama3.2:3b")
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
	if resp.Text() != `{"summary":"x"}` {
		t.Errorf("Unexpected text %q", resp.Text())
	}
	if resp.Usage.OutputTokens != 6 {
		t.Errorf("Expected 6 output tokens, got %d", resp.Usage.OutputTokens)
	}
}

func TestSynchronous_RateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"too many requests"}`))
	}))
	defer srv.Close()

	client, err := NewOllamaClient(srv.URL, "llama3.2:3b")
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

func TestSynchronous_RequiresModel(t *testing.T) {
	client, err := NewOllamaClient("http://localhost:1", "")
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	if _, err := client.Synchronous(context.Background(), &llm.Request{}); err == nil {
		t.Error("Expected error when no model is available")
	}
}
