package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrNoChoices is returned when a chat completion yields no choices.
	ErrNoChoices = errors.New("chat completion returned no choices")

	// ErrEmptyResponse is returned when a service response lacks the expected payload.
	ErrEmptyResponse = errors.New("service response missing payload")
)

// HTTPError reports a non-success response from an external AI service.
type HTTPError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s request failed with status %d: %s", e.Service, e.StatusCode, e.Body)
}
