// Package synth turns located PHP methods into docblock candidates by calling
// an LLM, retrying rate-limited and transient failures with exponential backoff.
package synth

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/aschepis/backscratcher/docblock/llm"
	"github.com/aschepis/backscratcher/docblock/phpdoc"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1 * time.Second
	DefaultMaxDelay    = 30 * time.Second
	DefaultMaxTokens   = 1024
)

// Config holds the retry policy and request shaping for a Client.
type Config struct {
	// MaxAttempts caps the total number of requests per method.
	MaxAttempts int
	// BaseDelay is the wait before the first retry; each later wait doubles.
	BaseDelay time.Duration
	// MaxDelay clamps every wait. Zero disables the clamp.
	MaxDelay time.Duration

	Model       string
	MaxTokens   int64
	Temperature *float64
}

// DefaultConfig returns the default retry policy.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
		MaxTokens:   DefaultMaxTokens,
	}
}

// State is a step of the retry state machine.
type State string

const (
	StateAttempting State = "attempting"
	StateBackoff    State = "backoff"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Transition is published every time a method's state machine moves.
type Transition struct {
	Method      string
	State       State
	Attempt     int           // zero-based attempt the state refers to
	Delay       time.Duration // set for StateBackoff
	RateLimited bool          // set for StateBackoff
	Err         error
}

// Observer receives transitions. It is called from the goroutine running
// Synthesize and must be safe for concurrent use.
type Observer func(Transition)

// Option configures a Client.
type Option func(*Client)

// WithTimerFactory replaces the timer used for backoff waits.
func WithTimerFactory(newTimer func() backoff.Timer) Option {
	return func(c *Client) {
		c.newTimer = newTimer
	}
}

// WithObserver registers an observer for state transitions.
func WithObserver(obs Observer) Option {
	return func(c *Client) {
		c.observer = obs
	}
}

// Client generates docblock candidates. It holds no mutable state and is safe
// for concurrent use.
type Client struct {
	client   llm.Client
	cfg      Config
	newTimer func() backoff.Timer
	observer Observer
	logger   zerolog.Logger
}

// NewClient creates a Client over an llm.Client.
func NewClient(client llm.Client, cfg Config, logger zerolog.Logger, opts ...Option) *Client {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.BaseDelay < 0 {
		cfg.BaseDelay = 0
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	c := &Client{
		client:   client,
		cfg:      cfg,
		newTimer: newRealTimer,
		logger:   logger.With().Str("component", "docblockSynthesizer").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newBackOff builds the delay schedule: BaseDelay * 2^n, clamped to MaxDelay,
// yielding Stop after MaxAttempts-1 delays.
func (c *Client) newBackOff() backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.cfg.BaseDelay
	eb.Multiplier = 2
	eb.RandomizationFactor = 0
	eb.MaxInterval = time.Duration(math.MaxInt64)
	if c.cfg.MaxDelay > 0 {
		eb.MaxInterval = c.cfg.MaxDelay
	}
	eb.MaxElapsedTime = 0
	eb.Reset()
	return backoff.WithMaxRetries(eb, uint64(c.cfg.MaxAttempts-1))
}

// nextDelay applies the Retry-After hint and keeps delays non-decreasing.
func (c *Client) nextDelay(computed time.Duration, retryAfter *time.Duration, prev time.Duration) time.Duration {
	delay := computed
	if retryAfter != nil && *retryAfter > delay {
		delay = *retryAfter
	}
	if c.cfg.MaxDelay > 0 && delay > c.cfg.MaxDelay {
		delay = c.cfg.MaxDelay
	}
	if delay < prev {
		delay = prev
	}
	return delay
}

// Synthesize produces a candidate for rec. Failures are *GenerationError.
func (c *Client) Synthesize(ctx context.Context, rec phpdoc.MethodRecord, body string) (phpdoc.Candidate, error) {
	logger := c.logger.With().Str("method", rec.Name).Logger()
	req := c.buildRequest(rec, body)
	schedule := c.newBackOff()

	fail := func(kind Kind, attempts int, err error) (phpdoc.Candidate, error) {
		genErr := &GenerationError{Kind: kind, Method: rec.Name, Attempts: attempts, Err: err}
		c.emit(Transition{Method: rec.Name, State: StateFailed, Attempt: attempts - 1, Err: genErr})
		logger.Warn().Str("kind", string(kind)).Int("attempts", attempts).Err(err).Msg("docblock generation failed")
		return phpdoc.Candidate{}, genErr
	}

	var prev time.Duration
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return fail(KindCancelled, attempt, err)
		}
		c.emit(Transition{Method: rec.Name, State: StateAttempting, Attempt: attempt})
		logger.Debug().Int("attempt", attempt+1).Msg("requesting docblock")

		resp, err := c.client.Synchronous(ctx, req)
		if ctxErr := ctx.Err(); ctxErr != nil {
			// the call may have completed, but its result is discarded
			return fail(KindCancelled, attempt+1, ctxErr)
		}

		if err == nil {
			cand, parseErr := ParseCandidate(rec, resp.Text())
			if parseErr != nil {
				return fail(KindInvalidResponse, attempt+1, parseErr)
			}
			c.emit(Transition{Method: rec.Name, State: StateSucceeded, Attempt: attempt})
			logger.Debug().Int("attempts", attempt+1).Str("assessment", string(cand.Assessment)).Msg("docblock generated")
			return cand, nil
		}

		if !isRetryable(err) {
			return fail(KindRejected, attempt+1, err)
		}

		computed := schedule.NextBackOff()
		if computed == backoff.Stop {
			return fail(KindExhausted, attempt+1, err)
		}
		delay := c.nextDelay(computed, llm.ExtractRetryAfter(err), prev)
		prev = delay

		rateLimited := llm.IsRateLimitError(err)
		c.emit(Transition{Method: rec.Name, State: StateBackoff, Attempt: attempt, Delay: delay, RateLimited: rateLimited, Err: err})
		logger.Warn().
			Int("attempt", attempt+1).
			Int("max_attempts", c.cfg.MaxAttempts).
			Bool("rate_limited", rateLimited).
			Dur("next_delay", delay).
			Err(err).
			Msg("docblock request failed. Retrying after delay")

		if err := c.wait(ctx, delay); err != nil {
			return fail(KindCancelled, attempt+1, err)
		}
	}
}

// wait blocks for delay or until ctx is done.
func (c *Client) wait(ctx context.Context, delay time.Duration) error {
	timer := c.newTimer()
	timer.Start(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C():
		return nil
	}
}

func (c *Client) emit(t Transition) {
	if c.observer != nil {
		c.observer(t)
	}
}

func (c *Client) buildRequest(rec phpdoc.MethodRecord, body string) *llm.Request {
	return &llm.Request{
		Model:       c.cfg.Model,
		System:      systemPrompt,
		Messages:    []llm.Message{llm.NewTextMessage(llm.RoleUser, BuildPrompt(rec, body))},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Format:      llm.ResponseFormatJSON,
	}
}

// isRetryable treats classified retryable errors and per-request deadlines
// as transient. Everything else is a refusal.
func isRetryable(err error) bool {
	if llm.IsRetryableError(err) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
