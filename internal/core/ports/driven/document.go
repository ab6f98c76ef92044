package driven

import (
	"context"

	"github.com/custodia-labs/docwatch/internal/core/domain"
)

// DocumentSource fetches the current state of the watched document.
// Failures are returned as *domain.FetchError; implementations never panic.
type DocumentSource interface {
	FetchDocument(ctx context.Context) (*domain.DocumentSnapshot, error)
}

// DocumentWriter commits new content for the watched document.
type DocumentWriter interface {
	// WriteDocument replaces the document content and returns the new state.
	WriteDocument(ctx context.Context, content, message string) (*domain.DocumentSnapshot, error)
}

// RateLimitReader reports the remaining API quota.
type RateLimitReader interface {
	RateLimit(ctx context.Context) (*domain.RateLimitInfo, error)
}

// DisplaySink renders document content and errors. Calls are
// fire-and-forget and must not block on user interaction.
type DisplaySink interface {
	ShowDocument(content string)
	ShowError(message string)
}

// ContentCache keeps the last raw read per target.
type ContentCache interface {
	// Get returns domain.ErrNotFound when nothing is cached for key.
	Get(ctx context.Context, key string) (*domain.CachedContent, error)
	Put(ctx context.Context, key string, content domain.CachedContent) error
	Delete(ctx context.Context, key string) error
}
