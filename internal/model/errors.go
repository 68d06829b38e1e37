package model

import (
	"fmt"
	"time"
)

// HTTPError wraps the status code of a failed LLM or storage call so retry
// logic can distinguish transient failures (429, 5xx) from permanent ones.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from a Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
