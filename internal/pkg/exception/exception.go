package exception

import (
	"errors"
	"fmt"
	"strings"
)

// ApplicationError handles application level errors.
type ApplicationError struct {
	Message    string
	StatusCode int
	Cause      error
}

// Error interface implementation.
func (e ApplicationError) Error() string {
	if e.Cause == nil {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.Message, e.Cause)
}

func (e ApplicationError) Unwrap() error {
	if e.Cause == nil {
		return errors.New(e.Message)
	}

	return e.Cause
}

func (e ApplicationError) Is(target error) bool {
	var targetErr ApplicationError

	if !errors.As(target, &targetErr) {
		return false
	}

	if e.StatusCode != targetErr.StatusCode {
		return false
	}

	// decorated errors carry a source prefix, the sentinel message survives
	// as a suffix
	return strings.HasSuffix(e.Message, targetErr.Message)
}

// ErrorCode returns error code for an application error.
func (e ApplicationError) ErrorCode() int {
	return e.StatusCode
}

// WithCause returns a copy of the error carrying the underlying cause,
// keeping the sentinel matchable via errors.Is.
func (e ApplicationError) WithCause(cause error) ApplicationError {
	e.Cause = cause

	return e
}

// FromSource prefixes the message with the originating source name so callers
// can tell which upstream produced the failure.
func (e ApplicationError) FromSource(source string) ApplicationError {
	e.Message = fmt.Sprintf("%s: %s", source, e.Message)

	return e
}
