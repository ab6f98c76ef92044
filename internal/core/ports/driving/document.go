package driving

import (
	"context"

	"github.com/custodia-labs/docwatch/internal/core/domain"
)

// DocumentService performs one-off operations on the watched document.
type DocumentService interface {
	// Fetch reads the current document state.
	Fetch(ctx context.Context) (*domain.DocumentSnapshot, error)

	// Update commits new content.
	Update(ctx context.Context, content string) (*domain.DocumentSnapshot, error)

	// RateLimit reports the remaining API quota.
	RateLimit(ctx context.Context) (*domain.RateLimitInfo, error)
}

// HistoryService exposes recorded reconciliation cycles.
type HistoryService interface {
	Recent(ctx context.Context, limit int) ([]domain.CycleRecord, error)
}
