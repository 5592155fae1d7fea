package consultation

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrEmptyQuery        = errors.New("query is required")
	ErrUnsupportedLang   = errors.New("language must be english or hindi")
	ErrMissingCredential = errors.New("AI gateway API key not configured")
	ErrEmptyCompletion   = errors.New("upstream returned no choices")
	ErrBusy              = errors.New("a consultation is already in progress")
)

const (
	msgRateLimited = "Rate limit exceeded. Please try again later."
	msgUnavailable = "Service temporarily unavailable. Please contact support."
	msgTimeout     = "Consultation timed out. Please try again."
)

// UpstreamError is a non-2xx answer from the chat-completion provider.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("AI API returned %d", e.StatusCode)
}

// RelayError is a failed consultation as the relay reports it.
type RelayError struct {
	Category Category
	Status   int
	Message  string
}

func (e *RelayError) Error() string {
	return e.Message
}

// categoryForStatus maps a relay-facing HTTP status to its category.
func categoryForStatus(status int) Category {
	switch status {
	case http.StatusTooManyRequests:
		return CategoryRateLimited
	case http.StatusPaymentRequired:
		return CategoryUnavailable
	case http.StatusGatewayTimeout:
		return CategoryTimeout
	default:
		return CategoryGeneric
	}
}
