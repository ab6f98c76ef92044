package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/docwatch/internal/core/domain"
)

// SyncController owns the reconciliation lifecycle for one document.
type SyncController interface {
	// Initialize runs the first cycle and arms the polling timer.
	Initialize(ctx context.Context) error

	// ApplySettingsChange re-runs a cycle and, when interval is non-nil,
	// re-arms the timer with it.
	ApplySettingsChange(ctx context.Context, interval *time.Duration) error

	// RunOnce runs a single reconciliation cycle outside the timer.
	RunOnce(ctx context.Context) domain.PollCycleResult

	// Dispose stops polling. The controller cannot be reused.
	Dispose()

	// State returns a snapshot of the sync state.
	State() domain.SyncState

	// Latest returns the last snapshot delivered to the sink, or nil.
	Latest() *domain.DocumentSnapshot
}
