package docintel

import "fmt"

// RetryableError indicates a transient failure (throttling or a 5xx)
// that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// BeginError is a non-transient rejection of the begin request.
type BeginError struct {
	StatusCode int
	Err        error
}

func (e *BeginError) Error() string {
	return fmt.Sprintf("begin analyze: status %d: %s", e.StatusCode, e.Err)
}

func (e *BeginError) Unwrap() error {
	return e.Err
}
