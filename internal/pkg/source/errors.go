package source

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/abndnt/paris-night-sub002/internal/pkg/exception"
)

var ErrRateLimited = exception.ApplicationError{
	StatusCode: http.StatusTooManyRequests,
	Message:    "source rate limit exceeded",
}

var ErrRetryExceeded = exception.ApplicationError{
	StatusCode: http.StatusInternalServerError,
	Message:    "retry exceeded",
}

var ErrMalformedResponse = exception.ApplicationError{
	StatusCode: http.StatusBadGateway,
	Message:    "malformed source response",
}

// RequestError carries the wire-level outcome of one provider call so the
// adapter can classify it.
type RequestError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: request failed with status %d", e.Source, e.StatusCode)
	}

	return fmt.Sprintf("%s: request failed: %s", e.Source, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// RetryableStatus reports whether an HTTP status is worth retrying:
// timeouts, throttling, and 5xx server faults.
func RetryableStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}

	return false
}

// RetryableError is the default transient/permanent classification shared by
// the adapters: retryable HTTP statuses and network resets/timeouts retry,
// everything else aborts.
func RetryableError(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		if reqErr.StatusCode != 0 {
			return RetryableStatus(reqErr.StatusCode)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return false
}
