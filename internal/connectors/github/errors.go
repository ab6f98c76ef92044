package github

import (
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docwatch/internal/core/domain"
)

// GitHub-specific errors.
var (
	// ErrNotAFile indicates the configured path resolves to a directory.
	ErrNotAFile = errors.New("github: path is a directory, not a file")
)

// RateLimitError represents a rate limit exceeded error with reset time.
type RateLimitError struct {
	ResetAt   time.Time
	Remaining int
	Limit     int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github: rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// Unwrap lets callers match domain.ErrRateLimited.
func (e *RateLimitError) Unwrap() error {
	return domain.ErrRateLimited
}

// APIError represents a GitHub API error response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401
	}
	return false
}

// toFetchError maps connector errors onto the domain failure type.
func toFetchError(err error) *domain.FetchError {
	if err == nil {
		return nil
	}

	var fe *domain.FetchError
	if errors.As(err, &fe) {
		return fe
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return domain.NewFetchError(apiErr.StatusCode, apiErr.Message, err)
	}

	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		msg := "rate limit exceeded"
		if !rlErr.ResetAt.IsZero() {
			msg += ", resets at " + rlErr.ResetAt.UTC().Format(time.RFC3339)
		}
		return domain.NewFetchError(403, msg, err)
	}

	return domain.NewFetchError(0, err.Error(), err)
}
