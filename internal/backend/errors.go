package backend

import (
	"errors"
	"fmt"
	"time"
)

// APIError represents a non-2xx response from the RAG backend.
type APIError struct {
	StatusCode int
	Body       string
	Endpoint   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend API error (status: %d, endpoint: %s)", e.StatusCode, e.Endpoint)
	}
	return fmt.Sprintf("backend API error: %s (status: %d, endpoint: %s)", e.Body, e.StatusCode, e.Endpoint)
}

// RateLimitError is returned when the local request budget is exhausted
// before the context ends.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("backend rate limit exceeded, retry after %v", e.RetryAfter)
}

// IsNotFound reports whether err is a 404 from the backend
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
