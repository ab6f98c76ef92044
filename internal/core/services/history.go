package services

import (
	"context"

	"github.com/custodia-labs/docwatch/internal/core/domain"
	"github.com/custodia-labs/docwatch/internal/core/ports/driven"
	"github.com/custodia-labs/docwatch/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// DefaultHistoryLimit is the number of cycles listed when no limit is given.
const DefaultHistoryLimit = 20

// HistoryService lists recorded reconciliation cycles.
type HistoryService struct {
	store driven.CycleHistoryStore
}

// NewHistoryService creates a history service. store may be nil.
func NewHistoryService(store driven.CycleHistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// Recent returns the newest cycles first.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]domain.CycleRecord, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > HistoryRetention {
		limit = HistoryRetention
	}
	return s.store.List(ctx, limit)
}
