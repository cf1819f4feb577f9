package synth

import (
	"errors"
	"fmt"
)

// Kind classifies why synthesis for a method failed.
type Kind string

const (
	// KindExhausted means every allowed attempt hit a retryable failure.
	KindExhausted Kind = "exhausted"
	// KindInvalidResponse means the service answered with content that does
	// not map onto a candidate. It is never retried.
	KindInvalidResponse Kind = "invalid_response"
	// KindCancelled means the caller's context ended first.
	KindCancelled Kind = "cancelled"
	// KindRejected means the service refused the request outright
	// (authentication, malformed request). It is never retried.
	KindRejected Kind = "rejected"
)

// GenerationError is returned by Client.Synthesize.
type GenerationError struct {
	Kind     Kind
	Method   string
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s after %d attempt(s)", e.Method, e.Kind, e.Attempts)
	}
	return fmt.Sprintf("%s: %s after %d attempt(s): %v", e.Method, e.Kind, e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a GenerationError of the given kind.
func IsKind(err error, kind Kind) bool {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind == kind
	}
	return false
}

// errInvalid marks response validation failures.
type errInvalid struct{ msg string }

func (e *errInvalid) Error() string { return e.msg }

func invalidf(format string, args ...any) error {
	return &errInvalid{msg: fmt.Sprintf(format, args...)}
}
