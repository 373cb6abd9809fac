// Package retry provides caller-side retry policy for opening streams.
// The stream core never retries on its own; whether and how to retry a failed
// turn belongs to the application, which can wrap the opening call in
// WithRetry.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net"
	"time"

	moderr "github.com/kerinova/llmstream/errors"
)

// Config holds retry configuration parameters
type Config struct {
	MaxAttempts int           `json:"max_attempts"`
	BaseDelay   time.Duration `json:"base_delay"`
	MaxDelay    time.Duration `json:"max_delay"`
	JitterRatio float64       `json:"jitter_ratio"`
}

// DefaultConfig returns the default retry configuration
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 5,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    3 * time.Second,
		JitterRatio: 0.25, // 25% jitter
	}
}

// WithRetry performs exponential backoff retries on transient errors.
func WithRetry(ctx context.Context, fn func() error) error {
	return WithRetryConfig(ctx, fn, DefaultConfig())
}

// WithRetryConfig performs exponential backoff retries with custom configuration.
func WithRetryConfig(ctx context.Context, fn func() error, config Config) error {
	var attempt int
	for {
		err := fn()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		attempt++
		if attempt >= config.MaxAttempts {
			return err
		}
		// Exponential backoff with jitter
		delay := time.Duration(float64(config.BaseDelay) * math.Pow(2, float64(attempt-1)))
		if delay > config.MaxDelay {
			delay = config.MaxDelay
		}
		// Add randomized jitter to prevent thundering herd
		jitter := time.Duration(rand.Float64() * config.JitterRatio * float64(delay))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay + jitter):
		}
	}
}

// IsTransient reports whether an error is worth retrying: rate limits,
// transport failures, 5xx statuses and network timeouts. Auth and protocol
// errors are permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, moderr.ErrRateLimited) || errors.Is(err, moderr.ErrNetwork) {
		return true
	}
	var se *moderr.StatusError
	if errors.As(err, &se) {
		return se.Status == 429 || se.Status >= 500
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}
