package context7

import (
	"errors"
	"fmt"
)

// ErrRateLimited is returned when every retry attempt was answered with
// HTTP 429. Callers that want a softer user message check for it with
// [errors.Is].
var ErrRateLimited = errors.New("context7: rate limit exceeded after retries")

// maxErrorBody bounds the response body excerpt carried by HTTPError.
// 300 characters is enough for the service's error payloads without
// flooding logs.
const maxErrorBody = 300

// HTTPError is a terminal (non-429) upstream failure. It carries the status
// code and a truncated body excerpt for diagnostics and is never retried.
type HTTPError struct {
	// Status is the HTTP status code (≥400, never 429).
	Status int

	// Path is the endpoint path the request was issued against.
	Path string

	// Body is the response body, truncated to maxErrorBody characters.
	Body string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("context7: HTTP %d on %s: %s", e.Status, e.Path, e.Body)
}

// newHTTPError builds an HTTPError, truncating body to maxErrorBody
// characters on a rune boundary.
func newHTTPError(status int, path string, body []byte) *HTTPError {
	return &HTTPError{Status: status, Path: path, Body: excerpt(body, maxErrorBody)}
}
