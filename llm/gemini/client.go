package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aschepis/backscratcher/docblock/llm"
	"github.com/samber/lo"
	"google.golang.org/genai"
)

// GeminiClient implements the llm.Client interface on top of the genai SDK.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

// NewGeminiClient creates a new GeminiClient. baseURL is optional and mostly
// useful for pointing the client at a proxy.
func NewGeminiClient(ctx context.Context, apiKey, model, baseURL string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

// Synchronous implements llm.Client.Synchronous.
func (g *GeminiClient) Synchronous(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	model := req.Model
	if model == "" {
		model = g.model
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.Format == llm.ResponseFormatJSON {
		cfg.ResponseMIMEType = "application/json"
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		cfg.Temperature = &temp
	}

	resp, err := g.cli.Models.GenerateContent(ctx, model, ToContents(req.Messages), cfg)
	if err != nil {
		return nil, convertGeminiError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, llm.NewProviderError("Gemini returned no candidates", nil)
	}

	candidate := resp.Candidates[0]
	content := lo.FilterMap(candidate.Content.Parts, func(p *genai.Part, _ int) (llm.ContentBlock, bool) {
		if p == nil || p.Text == "" || p.Thought {
			return llm.ContentBlock{}, false
		}
		return llm.ContentBlock{Type: llm.ContentBlockTypeText, Text: p.Text}, true
	})

	out := &llm.Response{
		Content:    content,
		StopReason: string(candidate.FinishReason),
	}
	if resp.UsageMetadata != nil {
		out.Usage = &llm.Usage{
			InputTokens:          int64(resp.UsageMetadata.PromptTokenCount),
			OutputTokens:         int64(resp.UsageMetadata.CandidatesTokenCount),
			CacheReadInputTokens: int64(resp.UsageMetadata.CachedContentTokenCount),
		}
	}
	return out, nil
}

// ToContents converts llm messages into genai contents. Gemini calls the
// assistant role "model".
func ToContents(msgs []llm.Message) []*genai.Content {
	return lo.Map(msgs, func(msg llm.Message, _ int) *genai.Content {
		role := genai.RoleUser
		if msg.Role == llm.RoleAssistant {
			role = genai.RoleModel
		}
		return &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.TextOf()}},
		}
	})
}

// convertGeminiError maps genai.APIError codes onto llm.Error.
func convertGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return llm.FromStatus("Gemini", apiErr.Code, geminiMessage(apiErr), nil, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return llm.FromStatus("Gemini", apiErrPtr.Code, geminiMessage(*apiErrPtr), nil, err)
	}
	return llm.ClassifyTransportError("Gemini", err)
}

func geminiMessage(apiErr genai.APIError) string {
	return strings.TrimSpace(strings.Join([]string{apiErr.Status, apiErr.Message}, " "))
}

var _ llm.Client = (*GeminiClient)(nil)
