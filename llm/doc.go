// Package llm provides a provider-neutral abstraction layer for Large Language Model (LLM) APIs.
//
// The docblock synthesizer talks to this package only; concrete providers
// live in the anthropic, openai, ollama and gemini subpackages.
//
// # Core Concepts
//
//  1. Messages: Message carries a role and text content blocks.
//
//  2. Client Interface: Client.Synchronous performs one complete round trip.
//     Implementations must translate provider failures into *Error.
//
//  3. Middleware: Middleware hooks decorate a Client (see WrapWithMiddleware)
//     for cross-cutting concerns such as logging.
//
//  4. Errors: Error classifies failures as rate limits, transient network or
//     server trouble, or permanent request problems. Retry policy lives with
//     the caller; providers only report.
//
//  5. Registry: ProviderRegistry picks the first enabled and configured
//     provider from an ordered preference list.
//
// Usage Example
//
//	base, _ := anthropic.NewAnthropicClient(apiKey, logger)
//	client := llm.WrapWithMiddleware(base, llm.NewLoggingMiddleware(logger))
//
//	resp, err := client.Synchronous(ctx, &llm.Request{
//	    Model:    "claude-haiku-4-5",
//	    Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "Hello!")},
//	})
//
// # Extension Points
//
// To add a new LLM provider:
//  1. Implement the Client interface
//  2. Translate between provider-specific types and llm package types
//  3. Map provider-specific errors to *Error (FromStatus helps)
package llm
