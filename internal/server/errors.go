package server

import (
	"errors"
	"net/http"

	"github.com/spigell/linkedintel/internal/ai"
	"github.com/spigell/linkedintel/internal/lookup"
)

// ErrValidation indicates request validation failure.
type ErrValidation struct {
	Message string
}

func (e *ErrValidation) Error() string {
	return "validation error: " + e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	var validation *ErrValidation
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case ai.IsRateLimited(err):
		return http.StatusTooManyRequests
	case errors.Is(err, lookup.ErrAIDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides internal details of unexpected failures.
func publicMessage(err error) string {
	switch HTTPStatus(err) {
	case http.StatusBadRequest:
		return err.Error()
	case http.StatusTooManyRequests:
		return "Rate limited, try again shortly"
	case http.StatusServiceUnavailable:
		return "AI features are not configured"
	default:
		return "request failed"
	}
}
