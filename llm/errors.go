package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"
)

// Error represents a provider-neutral LLM error.
type Error struct {
	Type        ErrorType
	Message     string
	Retryable   bool
	RetryAfter  *time.Duration
	StatusCode  int
	ProviderErr error // Original provider-specific error
}

// ErrorType represents the category of error.
type ErrorType string

const (
	ErrorTypeRateLimit       ErrorType = "rate_limit"
	ErrorTypeRequestTooLarge ErrorType = "request_too_large"
	ErrorTypeInvalidRequest  ErrorType = "invalid_request"
	ErrorTypeProvider        ErrorType = "provider"
	ErrorTypeNetwork         ErrorType = "network"
	ErrorTypeTimeout         ErrorType = "timeout"
	ErrorTypeUnknown         ErrorType = "unknown"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ProviderErr != nil {
		return e.Message + ": " + e.ProviderErr.Error()
	}
	return e.Message
}

// Unwrap returns the underlying provider error.
func (e *Error) Unwrap() error {
	return e.ProviderErr
}

// IsRateLimitError checks if an error is a rate limit error.
func IsRateLimitError(err error) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type == ErrorTypeRateLimit
	}
	return false
}

// IsRequestTooLargeError checks if an error is a request too large error.
func IsRequestTooLargeError(err error) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type == ErrorTypeRequestTooLarge
	}
	return false
}

// IsRetryableError checks if an error is retryable.
func IsRetryableError(err error) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Retryable
	}
	return false
}

// ExtractRetryAfter extracts the retry-after duration from an error.
func ExtractRetryAfter(err error) *time.Duration {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.RetryAfter
	}
	return nil
}

// NewRateLimitError creates a new rate limit error.
func NewRateLimitError(message string, retryAfter *time.Duration, providerErr error) *Error {
	return &Error{
		Type:        ErrorTypeRateLimit,
		Message:     message,
		Retryable:   true,
		RetryAfter:  retryAfter,
		StatusCode:  http.StatusTooManyRequests,
		ProviderErr: providerErr,
	}
}

// NewRequestTooLargeError creates a new request too large error.
// Resending the same method body cannot shrink it, so it is not retryable.
func NewRequestTooLargeError(message string, providerErr error) *Error {
	return &Error{
		Type:        ErrorTypeRequestTooLarge,
		Message:     message,
		Retryable:   false,
		StatusCode:  http.StatusRequestEntityTooLarge,
		ProviderErr: providerErr,
	}
}

// NewProviderError creates a new provider error.
func NewProviderError(message string, providerErr error) *Error {
	return &Error{
		Type:        ErrorTypeProvider,
		Message:     message,
		Retryable:   false,
		ProviderErr: providerErr,
	}
}

// NewNetworkError creates a retryable transport-level error.
func NewNetworkError(message string, providerErr error) *Error {
	return &Error{
		Type:        ErrorTypeNetwork,
		Message:     message,
		Retryable:   true,
		ProviderErr: providerErr,
	}
}

// FromStatus maps an HTTP status code returned by a provider onto an Error.
// retryAfter may be nil.
func FromStatus(provider string, status int, message string, retryAfter *time.Duration, providerErr error) *Error {
	switch {
	case status == http.StatusTooManyRequests:
		return NewRateLimitError(fmt.Sprintf("%s rate limit: %s", provider, message), retryAfter, providerErr)
	case status == http.StatusRequestEntityTooLarge:
		return NewRequestTooLargeError(fmt.Sprintf("%s request too large: %s", provider, message), providerErr)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return &Error{
			Type:        ErrorTypeTimeout,
			Message:     fmt.Sprintf("%s timeout: %s", provider, message),
			Retryable:   true,
			StatusCode:  status,
			ProviderErr: providerErr,
		}
	case status == http.StatusConflict || status >= 500:
		// 529 (overloaded) lands here as well
		return &Error{
			Type:        ErrorTypeProvider,
			Message:     fmt.Sprintf("%s server error: %s", provider, message),
			Retryable:   true,
			RetryAfter:  retryAfter,
			StatusCode:  status,
			ProviderErr: providerErr,
		}
	case status >= 400:
		return &Error{
			Type:        ErrorTypeInvalidRequest,
			Message:     fmt.Sprintf("%s invalid request: %s", provider, message),
			Retryable:   false,
			StatusCode:  status,
			ProviderErr: providerErr,
		}
	default:
		return &Error{
			Type:        ErrorTypeUnknown,
			Message:     fmt.Sprintf("%s error: %s", provider, message),
			Retryable:   false,
			StatusCode:  status,
			ProviderErr: providerErr,
		}
	}
}

// ClassifyTransportError wraps errors that never reached an HTTP status:
// dial failures, resets and deadlines. Context cancellation is passed through
// untouched so callers can tell it apart from provider trouble.
func ClassifyTransportError(provider string, err error) error {
	if err == nil {
		return nil
	}
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &Error{
				Type:        ErrorTypeTimeout,
				Message:     provider + " request timed out",
				Retryable:   true,
				ProviderErr: err,
			}
		}
		return NewNetworkError(provider+" network error", err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return NewNetworkError(provider+" network error", err)
	}
	return NewProviderError(provider+" request failed", err)
}

// ParseRetryAfter reads a Retry-After header in either delta-seconds or
// HTTP-date form. It returns nil when the header is absent or unparseable.
func ParseRetryAfter(header http.Header) *time.Duration {
	if header == nil {
		return nil
	}
	value := header.Get("Retry-After")
	if value == "" {
		return nil
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		d := time.Duration(seconds) * time.Second
		return &d
	}
	if retryTime, err := http.ParseTime(value); err == nil {
		d := time.Until(retryTime)
		if d < 0 {
			d = 0
		}
		return &d
	}
	return nil
}
