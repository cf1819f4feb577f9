package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aschepis/backscratcher/docblock/llm"
	"github.com/rs/zerolog"
)

// jsonPrefill is sent as the start of the assistant turn when JSON output is
// requested; Claude then continues the object instead of adding prose.
const jsonPrefill = "{"

// AnthropicClient implements the llm.Client interface for Anthropic's API.
type AnthropicClient struct {
	client *anthropic.Client
	logger zerolog.Logger
}

// NewAnthropicClient creates a new AnthropicClient with the given API key.
// The SDK's own retry loop is disabled; retry policy belongs to the caller.
func NewAnthropicClient(apiKey string, logger zerolog.Logger, opts ...option.RequestOption) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	client := anthropic.NewClient(reqOpts...)
	return &AnthropicClient{
		client: &client,
		logger: logger.With().Str("component", "anthropicClient").Logger(),
	}, nil
}

// Synchronous implements llm.Client.Synchronous.
func (c *AnthropicClient) Synchronous(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}

	anthropicMsgs := ToMessageParams(req.Messages)
	prefilled := req.Format == llm.ResponseFormatJSON
	if prefilled {
		anthropicMsgs = append(anthropicMsgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(jsonPrefill)))
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: maxTokens,
		Messages:  anthropicMsgs,
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, convertAnthropicError(err)
	}

	content := make([]llm.ContentBlock, 0, len(message.Content))
	for _, blockUnion := range message.Content {
		if block, ok := blockUnion.AsAny().(anthropic.TextBlock); ok {
			content = append(content, llm.ContentBlock{
				Type: llm.ContentBlockTypeText,
				Text: block.Text,
			})
		}
	}
	if prefilled {
		content = append([]llm.ContentBlock{{Type: llm.ContentBlockTypeText, Text: jsonPrefill}}, content...)
	}

	usage := &llm.Usage{
		InputTokens:              message.Usage.InputTokens,
		OutputTokens:             message.Usage.OutputTokens,
		CacheCreationInputTokens: message.Usage.CacheCreationInputTokens,
		CacheReadInputTokens:     message.Usage.CacheReadInputTokens,
	}

	return &llm.Response{
		Content:    content,
		Usage:      usage,
		StopReason: string(message.StopReason),
	}, nil
}

// convertAnthropicError converts SDK errors to llm.Error types.
func convertAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return llm.ClassifyTransportError("Anthropic", err)
	}

	var header http.Header
	if apiErr.Response != nil {
		header = apiErr.Response.Header
	}
	return llm.FromStatus("Anthropic", apiErr.StatusCode, http.StatusText(apiErr.StatusCode), llm.ParseRetryAfter(header), err)
}

var _ llm.Client = (*AnthropicClient)(nil)
