package llm

import (
	"strings"
)

// MessageRole represents the role of a message in a conversation.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Message represents a single message in a conversation.
// This is provider-neutral and can represent user, assistant, or system messages.
type Message struct {
	Role    MessageRole
	Content []ContentBlock
}

// ContentBlock represents a single content block within a message.
type ContentBlock struct {
	Type ContentBlockType
	Text string
}

// ContentBlockType represents the type of content block.
type ContentBlockType string

const (
	ContentBlockTypeText ContentBlockType = "text"
)

// ResponseFormat asks the provider to constrain its output.
type ResponseFormat string

const (
	ResponseFormatText ResponseFormat = ""
	ResponseFormatJSON ResponseFormat = "json"
)

// Request represents a complete LLM API request.
type Request struct {
	Model       string
	Messages    []Message
	System      string
	MaxTokens   int64
	Temperature *float64 // Optional temperature override
	Format      ResponseFormat
}

// Response represents a complete LLM API response.
type Response struct {
	Content    []ContentBlock
	Usage      *Usage
	StopReason string
}

// Text concatenates all text blocks of the response.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	for _, block := range r.Content {
		if block.Type == ContentBlockTypeText {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// Usage represents token usage information from an LLM response.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	// Provider-specific usage fields can be added here
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

// NewTextMessage creates a new message with a single text block.
func NewTextMessage(role MessageRole, text string) Message {
	return Message{
		Role: role,
		Content: []ContentBlock{
			{
				Type: ContentBlockTypeText,
				Text: text,
			},
		},
	}
}

// TextOf returns the concatenated text blocks of a message.
func (m Message) TextOf() string {
	var b strings.Builder
	for _, block := range m.Content {
		if block.Type == ContentBlockTypeText {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}
