package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrLocationNotFound is returned by a LocationDirectory when a name has no entry.
	ErrLocationNotFound = errors.New("location not found")

	// ErrNoMatch is returned when the geocoder reports zero candidates for an address.
	ErrNoMatch = errors.New("geocoder returned no matches")

	// ErrBatchTimeout fails a whole fetch batch that did not complete within its bound.
	ErrBatchTimeout = errors.New("forecast batch timed out")
)

// NetworkError wraps a transport-level failure talking to an upstream API.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network error: " + e.Err.Error() }

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError reports a non-200 response from an upstream API.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http status %d", e.StatusCode)
	}
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

// FormatError reports an upstream document that could not be decoded or is
// missing required fields.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string { return "invalid response format: " + e.Err.Error() }

func (e *FormatError) Unwrap() error { return e.Err }

// FailureReason classifies an item-level error for logs and metrics.
func FailureReason(err error) string {
	var (
		netErr    *NetworkError
		httpErr   *HTTPError
		formatErr *FormatError
	)
	switch {
	case errors.Is(err, ErrLocationNotFound):
		return "not_found"
	case errors.Is(err, ErrNoMatch):
		return "no_match"
	case errors.As(err, &httpErr):
		return "http"
	case errors.As(err, &formatErr):
		return "format"
	case errors.As(err, &netErr):
		return "network"
	default:
		return "other"
	}
}
