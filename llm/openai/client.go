package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/aschepis/backscratcher/docblock/llm"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient implements the llm.Client interface for OpenAI's API and
// OpenAI-compatible endpoints.
type OpenAIClient struct {
	client *openai.Client
	model  string // Default model to use if not specified in request
}

// NewOpenAIClient creates a new OpenAIClient.
// If baseURL is empty, it will use the default OpenAI API endpoint.
func NewOpenAIClient(apiKey, baseURL, model, organization string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if organization != "" {
		config.OrgID = organization
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

// Synchronous implements llm.Client.Synchronous.
func (c *OpenAIClient) Synchronous(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}

	model := req.Model
	if model == "" {
		model = c.model
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: ToOpenAIMessages(req.System, req.Messages),
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = int(req.MaxTokens)
	}
	if req.Temperature != nil {
		chatReq.Temperature = float32(*req.Temperature)
	}
	if req.Format == llm.ResponseFormatJSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	chatResp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, convertOpenAIError(err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, llm.NewProviderError("OpenAI returned no choices", nil)
	}

	choice := chatResp.Choices[0]
	content := make([]llm.ContentBlock, 0, 1)
	if choice.Message.Content != "" {
		content = append(content, llm.ContentBlock{
			Type: llm.ContentBlockTypeText,
			Text: choice.Message.Content,
		})
	}

	stopReason := "stop"
	if choice.FinishReason == openai.FinishReasonLength {
		stopReason = "max_tokens"
	}

	return &llm.Response{
		Content: content,
		Usage: &llm.Usage{
			InputTokens:  int64(chatResp.Usage.PromptTokens),
			OutputTokens: int64(chatResp.Usage.CompletionTokens),
		},
		StopReason: stopReason,
	}, nil
}

// convertOpenAIError converts OpenAI API errors to llm.Error types.
// go-openai does not surface response headers, so no Retry-After is carried.
func convertOpenAIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return llm.FromStatus("OpenAI", apiErr.HTTPStatusCode, apiErr.Message, nil, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return llm.FromStatus("OpenAI", reqErr.HTTPStatusCode, reqErr.HTTPStatus, nil, err)
	}

	return llm.ClassifyTransportError("OpenAI", err)
}

var _ llm.Client = (*OpenAIClient)(nil)
