package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRateLimited is returned when the upstream signals its call quota is exhausted
	ErrRateLimited = errors.New("upstream rate limit reached")
	// ErrUpstreamError is returned when the upstream answers with an error message
	ErrUpstreamError = errors.New("upstream returned an error")
	// ErrNoData is returned when the upstream answers without the expected data
	ErrNoData = errors.New("upstream returned no data")
	// ErrNotConfigured is returned when a credential is missing
	ErrNotConfigured = errors.New("upstream API key is not configured")
	// ErrInvalidResponse is returned when a response body cannot be interpreted
	ErrInvalidResponse = errors.New("invalid upstream response format")
)

// StatusError is returned when an upstream answers with an unexpected HTTP status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status code %d: %s", e.StatusCode, e.Body)
}

// Is lets a 429 status match ErrRateLimited
func (e *StatusError) Is(target error) bool {
	return target == ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}

// UpstreamMessage extracts the provider's own text from an ErrUpstreamError
// chain, e.g. "Invalid API call".
func UpstreamMessage(err error) string {
	var msgErr *messageError
	if errors.As(err, &msgErr) {
		return msgErr.message
	}
	return err.Error()
}

type messageError struct {
	kind    error
	message string
}

func (e *messageError) Error() string {
	return fmt.Sprintf("%v: %s", e.kind, e.message)
}

func (e *messageError) Unwrap() error {
	return e.kind
}
