package driven

import (
	"context"

	"github.com/custodia-labs/docwatch/internal/core/domain"
)

// CycleHistoryStore persists reconciliation cycles.
type CycleHistoryStore interface {
	// Record stores a completed cycle.
	Record(ctx context.Context, rec domain.CycleRecord) error

	// List returns the most recent cycles, newest first.
	List(ctx context.Context, limit int) ([]domain.CycleRecord, error)

	// Prune keeps only the newest keep records.
	Prune(ctx context.Context, keep int) error
}
