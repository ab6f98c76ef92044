package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates an optional capability is not wired.
	ErrNotImplemented = errors.New("not implemented")

	// ErrInvalidVersion indicates a remote payload carried no usable version marker.
	ErrInvalidVersion = errors.New("invalid version marker")

	// ErrAuthRequired indicates the username or token is not configured.
	ErrAuthRequired = errors.New("username or token missing")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Scheduler and controller errors.

	// ErrSchedulerArmed indicates Start was called while a timer is already armed.
	// Callers must Stop or Restart instead.
	ErrSchedulerArmed = errors.New("scheduler already armed")

	// ErrControllerNotPolling indicates an operation that requires the Polling state.
	ErrControllerNotPolling = errors.New("controller is not polling")

	// ErrControllerDisposed indicates the controller has been disposed.
	ErrControllerDisposed = errors.New("controller disposed")
)

// FetchError is the failure of a single round trip against the remote API.
// It is returned as data; a document source never panics past its boundary.
type FetchError struct {
	// StatusCode is the HTTP status, or 0 for transport and parse failures.
	StatusCode int

	// Message is human readable. It comes from the response body's error
	// field when present, otherwise it names the status code.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch failed (%d): %s", e.StatusCode, e.Message)
	}
	return "fetch failed: " + e.Message
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError builds a FetchError, deriving the message from the status
// code when no message is available.
func NewFetchError(status int, message string, cause error) *FetchError {
	if message == "" {
		switch {
		case status > 0:
			message = fmt.Sprintf("HTTP %d", status)
		case cause != nil:
			message = cause.Error()
		default:
			message = "unknown error"
		}
	}
	return &FetchError{StatusCode: status, Message: message, Err: cause}
}

// AsFetchError converts any error into a FetchError, preserving an existing one.
func AsFetchError(err error) *FetchError {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return NewFetchError(0, "", err)
}
