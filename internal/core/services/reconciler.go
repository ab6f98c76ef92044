package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/docwatch/internal/core/domain"
	"github.com/custodia-labs/docwatch/internal/core/ports/driven"
	"github.com/custodia-labs/docwatch/internal/logger"
)

// HistoryRetention is the number of cycle records kept after pruning.
const HistoryRetention = 200

// Reconciler runs one fetch-compare-display cycle at a time.
// Failures are returned as domain.OutcomeFailed and never reach the tracker.
type Reconciler struct {
	source  driven.DocumentSource
	sink    driven.DisplaySink
	tracker *VersionTracker
	history driven.CycleHistoryStore

	now func() time.Time

	// flight is non-nil while a cycle is running and closed when it ends.
	mu     sync.Mutex
	flight chan struct{}
	latest *domain.DocumentSnapshot

	// applyMu orders result application against disposal.
	applyMu  sync.RWMutex
	disposed bool
}

// NewReconciler creates a reconciler. history may be nil.
func NewReconciler(
	source driven.DocumentSource,
	sink driven.DisplaySink,
	tracker *VersionTracker,
	history driven.CycleHistoryStore,
) *Reconciler {
	return &Reconciler{
		source:  source,
		sink:    sink,
		tracker: tracker,
		history: history,
		now:     time.Now,
	}
}

// RunOnce runs a reconciliation cycle. If another cycle is in flight it waits
// for that cycle to finish and returns a skipped result without fetching.
func (r *Reconciler) RunOnce(ctx context.Context) domain.PollCycleResult {
	return r.run(ctx, true)
}

// Tick runs a reconciliation cycle for a timer tick. A tick that finds a
// cycle in flight returns a skipped result immediately.
func (r *Reconciler) Tick(ctx context.Context) domain.PollCycleResult {
	return r.run(ctx, false)
}

func (r *Reconciler) run(ctx context.Context, wait bool) domain.PollCycleResult {
	if r.isDisposed() {
		return domain.SkippedResult(domain.SkipDisposed)
	}

	r.mu.Lock()
	if r.flight != nil {
		done := r.flight
		r.mu.Unlock()
		if wait {
			select {
			case <-done:
			case <-ctx.Done():
			}
		}
		logger.Debug("reconcile skipped", "reason", domain.SkipInFlight)
		return domain.SkippedResult(domain.SkipInFlight)
	}
	done := make(chan struct{})
	r.flight = done
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.flight = nil
		r.mu.Unlock()
		close(done)
	}()

	started := r.now()
	result := r.cycle(ctx)
	if result.Skipped() {
		logger.Debug("reconcile skipped", "reason", result.Skip)
		return result
	}

	r.logResult(result)
	r.record(ctx, started, result)
	return result
}

// Latest returns the last snapshot pushed to the sink.
func (r *Reconciler) Latest() *domain.DocumentSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

// MarkDisposed discards every result that has not been applied yet.
// After it returns the sink receives no further calls.
func (r *Reconciler) MarkDisposed() {
	r.applyMu.Lock()
	defer r.applyMu.Unlock()
	r.disposed = true
}

func (r *Reconciler) isDisposed() bool {
	r.applyMu.RLock()
	defer r.applyMu.RUnlock()
	return r.disposed
}

func (r *Reconciler) cycle(ctx context.Context) (result domain.PollCycleResult) {
	snap, err := r.fetch(ctx)

	r.applyMu.RLock()
	defer r.applyMu.RUnlock()

	if r.disposed {
		return domain.SkippedResult(domain.SkipDisposed)
	}

	if err == nil && snap == nil {
		err = domain.NewFetchError(0, "", domain.ErrInvalidVersion)
	}
	if err != nil {
		result = domain.FailedResult(err)
		r.sink.ShowError(result.Reason)
		return result
	}

	if r.tracker.Observe(snap.Version) == domain.Unchanged {
		return domain.UnchangedResult()
	}

	r.mu.Lock()
	r.latest = snap
	r.mu.Unlock()

	r.sink.ShowDocument(snap.Content)
	return domain.UpdatedResult(snap)
}

// fetch calls the source, converting a panic into a FetchError.
func (r *Reconciler) fetch(ctx context.Context) (snap *domain.DocumentSnapshot, err error) {
	defer func() {
		if p := recover(); p != nil {
			snap = nil
			err = domain.NewFetchError(0, fmt.Sprintf("document source panicked: %v", p), nil)
		}
	}()
	return r.source.FetchDocument(ctx)
}

func (r *Reconciler) logResult(result domain.PollCycleResult) {
	switch result.Outcome {
	case domain.OutcomeUpdated:
		logger.Info("document updated", "version", result.Snapshot.Version.Short())
	case domain.OutcomeFailed:
		logger.Warn("reconcile failed", "error", result.Reason)
	default:
		logger.Debug("document unchanged")
	}
}

func (r *Reconciler) record(ctx context.Context, started time.Time, result domain.PollCycleResult) {
	if r.history == nil {
		return
	}

	rec := domain.CycleRecord{
		StartedAt: started,
		EndedAt:   r.now(),
		Outcome:   result.Outcome,
		Error:     result.Reason,
	}
	if result.Snapshot != nil {
		rec.Version = result.Snapshot.Version
	} else if v, ok := r.tracker.Current(); ok {
		rec.Version = v
	}

	if err := r.history.Record(ctx, rec); err != nil {
		logger.Warn("record cycle", "error", err)
		return
	}
	if err := r.history.Prune(ctx, HistoryRetention); err != nil {
		logger.Warn("prune cycle history", "error", err)
	}
}
