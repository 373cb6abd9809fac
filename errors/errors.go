// Package errors defines the error taxonomy shared by the stream controller
// and the provider adapters. Terminal stream failures wrap exactly one of the
// sentinels below so callers can classify with errors.Is.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCredential means the selected provider has no API key configured.
	ErrNoCredential = errors.New("no credential configured")
	// ErrAuth covers 401/403 responses.
	ErrAuth = errors.New("authentication rejected")
	// ErrRateLimited covers 429 responses.
	ErrRateLimited = errors.New("rate limited")
	// ErrNetwork covers transport-level failures (dial, TLS, mid-body read).
	ErrNetwork = errors.New("network failure")
	// ErrProtocol covers unexpected statuses, malformed top-level responses
	// and inline error objects reported by the provider mid-stream.
	ErrProtocol = errors.New("protocol error")
	// ErrUnknownProvider means the request named a provider that is not configured.
	ErrUnknownProvider = errors.New("unknown provider")
)

// StatusError records a non-200 HTTP status so retry and classification
// decisions can inspect the code via errors.As.
type StatusError struct {
	Status int
	Body   string
	Source string // "openai", "gemini"
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s http %d: %s", e.Source, e.Status, e.Body)
}

// FromStatus maps a non-200 status to the taxonomy, keeping the StatusError
// in the chain.
func FromStatus(status int, body, source string) error {
	se := &StatusError{Status: status, Body: body, Source: source}
	switch {
	case status == 401 || status == 403:
		return fmt.Errorf("%w: %w", ErrAuth, se)
	case status == 429:
		return fmt.Errorf("%w: %w", ErrRateLimited, se)
	default:
		return fmt.Errorf("%w: %w", ErrProtocol, se)
	}
}
