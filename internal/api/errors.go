package api

import (
	"errors"
	"fmt"
	"strings"
)

// Op names the client operation an error belongs to.
type Op string

const (
	OpUpload  Op = "upload"
	OpSummary Op = "summary"
	OpMetrics Op = "metrics"
)

// NetworkError means no response was received: DNS failure, refused
// connection, timeout or cancellation.
type NetworkError struct {
	Err error
	Op  Op
}

func (e *NetworkError) Error() string {
	return "Network error: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError is a response with a non-2xx status.
type HTTPError struct {
	Op     Op
	Body   string
	Status int
}

func (e *HTTPError) Error() string {
	switch e.Op {
	case OpUpload:
		body := strings.TrimSpace(e.Body)
		if body == "" {
			return fmt.Sprintf("Upload failed: %d", e.Status)
		}
		return fmt.Sprintf("Upload failed: %d %s", e.Status, body)
	case OpSummary:
		return fmt.Sprintf("Summary fetch failed: %d", e.Status)
	case OpMetrics:
		return fmt.Sprintf("Metrics fetch failed: %d", e.Status)
	default:
		return fmt.Sprintf("Request failed: %d", e.Status)
	}
}

// ParseError is a 2xx response whose body could not be decoded.
type ParseError struct {
	Err error
	Op  Op
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Invalid %s response: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

// Message returns the user-facing text for an error returned by the client.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var netErr *NetworkError
	var httpErr *HTTPError
	var parseErr *ParseError
	switch {
	case errors.As(err, &netErr):
		return netErr.Error()
	case errors.As(err, &httpErr):
		return httpErr.Error()
	case errors.As(err, &parseErr):
		return parseErr.Error()
	default:
		return err.Error()
	}
}
