package ai

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMalformedResponse is returned when the model output cannot be parsed even
	// after repair.
	ErrMalformedResponse = errors.New("malformed ai response")
	// ErrUnavailable wraps failures of the generative backend other than rate limits.
	ErrUnavailable = errors.New("ai backend unavailable")
)

// RateLimitedError is returned once retries are exhausted on rate limit failures.
type RateLimitedError struct {
	StatusCode int
	Err        error
}

func (e *RateLimitedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("ai backend rate limited (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("ai backend rate limited (status %d): %v", e.StatusCode, e.Err)
}

func (e *RateLimitedError) Unwrap() error { return e.Err }

// NewRateLimitedError wraps err as a 429 rate limit failure.
func NewRateLimitedError(err error) *RateLimitedError {
	return &RateLimitedError{StatusCode: http.StatusTooManyRequests, Err: err}
}

// IsRateLimited reports whether err carries a rate limit failure.
func IsRateLimited(err error) bool {
	var rl *RateLimitedError
	return errors.As(err, &rl)
}
