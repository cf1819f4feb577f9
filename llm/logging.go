package llm

import (
	"context"

	"github.com/rs/zerolog"
)

// LoggingMiddleware records every provider round trip: request shape on the
// way out, token usage on the way back, and the classified error on failure.
type LoggingMiddleware struct {
	logger zerolog.Logger
}

// NewLoggingMiddleware creates a new LoggingMiddleware.
func NewLoggingMiddleware(logger zerolog.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{
		logger: logger.With().Str("component", "llmLoggingMiddleware").Logger(),
	}
}

// BeforeRequest implements Middleware.BeforeRequest.
func (m *LoggingMiddleware) BeforeRequest(ctx context.Context, req *Request) (*Request, error) {
	if req == nil {
		return req, nil
	}
	promptChars := len(req.System)
	for _, msg := range req.Messages {
		promptChars += len(msg.TextOf())
	}
	m.logger.Debug().
		Str("model", req.Model).
		Int("messages", len(req.Messages)).
		Int("prompt_chars", promptChars).
		Int64("max_tokens", req.MaxTokens).
		Str("format", string(req.Format)).
		Msg("Sending LLM request")
	return req, nil
}

// AfterResponse implements Middleware.AfterResponse.
func (m *LoggingMiddleware) AfterResponse(ctx context.Context, req *Request, resp *Response) (*Response, error) {
	if resp == nil {
		return resp, nil
	}
	evt := m.logger.Debug().Str("stop_reason", resp.StopReason)
	if resp.Usage != nil {
		evt = evt.Int64("input_tokens", resp.Usage.InputTokens).
			Int64("output_tokens", resp.Usage.OutputTokens)
	}
	evt.Msg("Received LLM response")
	return resp, nil
}

// OnError implements Middleware.OnError.
func (m *LoggingMiddleware) OnError(ctx context.Context, req *Request, err error) error {
	if err == nil {
		return nil
	}
	m.logger.Warn().
		Err(err).
		Bool("rate_limited", IsRateLimitError(err)).
		Bool("retryable", IsRetryableError(err)).
		Msg("LLM request failed")
	return err
}
