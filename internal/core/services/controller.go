package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/docwatch/internal/core/domain"
	"github.com/custodia-labs/docwatch/internal/core/ports/driven"
	"github.com/custodia-labs/docwatch/internal/core/ports/driving"
	"github.com/custodia-labs/docwatch/internal/logger"
)

// Ensure Controller implements the interface.
var _ driving.SyncController = (*Controller)(nil)

// Controller owns the tracker, scheduler and reconciler for one document.
//
// State machine: Uninitialized -> Polling on Initialize, even when the first
// cycle fails, then Polling -> Disposed on Dispose. Disposed is terminal;
// re-initialising means building a new Controller.
type Controller struct {
	tracker    *VersionTracker
	scheduler  *PollScheduler
	reconciler *Reconciler

	mu       sync.Mutex
	state    domain.ControllerState
	interval time.Duration
	tickCtx  context.Context

	// initDone is non-nil while the first cycle runs and closed when
	// Initialize has settled; initErr is its result.
	initDone chan struct{}
	initErr  error

	// Settings changes that arrived during the first cycle.
	changed         bool
	pendingInterval *time.Duration
}

// NewController creates a controller polling at interval. history may be nil.
func NewController(
	source driven.DocumentSource,
	sink driven.DisplaySink,
	history driven.CycleHistoryStore,
	interval time.Duration,
) *Controller {
	return NewControllerWithScheduler(source, sink, history, interval, NewPollScheduler())
}

// NewControllerWithScheduler creates a controller using the given scheduler.
func NewControllerWithScheduler(
	source driven.DocumentSource,
	sink driven.DisplaySink,
	history driven.CycleHistoryStore,
	interval time.Duration,
	scheduler *PollScheduler,
) *Controller {
	tracker := NewVersionTracker()
	return &Controller{
		tracker:    tracker,
		scheduler:  scheduler,
		reconciler: NewReconciler(source, sink, tracker, history),
		state:      domain.StateUninitialized,
		interval:   domain.ClampPollInterval(interval),
	}
}

// Initialize runs the first cycle synchronously and then arms the timer.
// A failed first cycle is reported to the sink and polling starts anyway.
// Calling Initialize on a polling controller is a no-op; a call that lands
// while another Initialize is running waits for it and returns its result.
func (c *Controller) Initialize(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.state == domain.StateDisposed:
		c.mu.Unlock()
		return domain.ErrControllerDisposed
	case c.state == domain.StatePolling:
		c.mu.Unlock()
		return nil
	case c.initDone != nil:
		done := c.initDone
		c.mu.Unlock()
		return c.waitInitialized(ctx, done)
	}
	c.initDone = make(chan struct{})
	// Ticks outlive the caller's deadline; only Dispose ends polling.
	c.tickCtx = context.WithoutCancel(ctx)
	c.mu.Unlock()

	logger.Section("initialize")
	result := c.reconciler.RunOnce(ctx)
	logger.Debug("initial cycle", "result", result.String())

	c.mu.Lock()
	defer c.mu.Unlock()
	// A settings change during the first cycle may have been fetched with
	// the old settings.
	for c.changed && c.state != domain.StateDisposed {
		c.changed = false
		if c.pendingInterval != nil {
			c.interval = domain.ClampPollInterval(*c.pendingInterval)
			c.pendingInterval = nil
		}
		c.mu.Unlock()
		result = c.reconciler.RunOnce(ctx)
		logger.Debug("settings change cycle", "result", result.String())
		c.mu.Lock()
	}

	if c.state == domain.StateDisposed {
		c.initErr = domain.ErrControllerDisposed
	} else {
		c.state = domain.StatePolling
		c.initErr = c.scheduler.Start(c.interval, c.tick)
	}
	close(c.initDone)
	c.initDone = nil
	return c.initErr
}

func (c *Controller) waitInitialized(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initErr
}

// ApplySettingsChange re-syncs immediately after a settings mutation and,
// when interval is non-nil, restarts the timer with it. The re-sync happens
// before the new cadence starts.
//
// Outside Polling it returns ErrControllerNotPolling. A change made while
// Initialize runs is still recorded, and Initialize re-syncs and uses the
// interval before arming the timer.
func (c *Controller) ApplySettingsChange(ctx context.Context, interval *time.Duration) error {
	c.mu.Lock()
	err := c.stateErr()
	if err != nil && c.initDone != nil && c.state == domain.StateUninitialized {
		c.changed = true
		if interval != nil {
			d := *interval
			c.pendingInterval = &d
		}
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}

	result := c.reconciler.RunOnce(ctx)
	if result.Skip == domain.SkipInFlight {
		// the cycle we waited on may have fetched with the old settings
		result = c.reconciler.RunOnce(ctx)
	}
	logger.Debug("settings change cycle", "result", result.String())

	if interval == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != domain.StatePolling {
		return domain.ErrControllerDisposed
	}
	c.interval = domain.ClampPollInterval(*interval)
	c.scheduler.Restart(c.interval, c.tick)
	return nil
}

// RunOnce runs one cycle outside the timer, e.g. for a manual refresh.
func (c *Controller) RunOnce(ctx context.Context) domain.PollCycleResult {
	return c.reconciler.RunOnce(ctx)
}

// Dispose stops polling and discards results of cycles still in flight.
// It does not wait for those cycles to return.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == domain.StateDisposed {
		return
	}
	c.state = domain.StateDisposed
	c.reconciler.MarkDisposed()
	c.scheduler.Stop()
	logger.Debug("controller disposed")
}

// State returns a snapshot of the sync state.
func (c *Controller) State() domain.SyncState {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	version, has := c.tracker.Current()
	return domain.SyncState{
		LastVersion:    version,
		HasVersion:     has,
		IsPolling:      c.scheduler.Armed(),
		ActiveInterval: c.scheduler.Interval(),
		State:          state,
	}
}

// Latest returns the last snapshot delivered to the sink.
func (c *Controller) Latest() *domain.DocumentSnapshot {
	return c.reconciler.Latest()
}

// Wait blocks until scheduled cycles that have started have returned.
func (c *Controller) Wait() {
	c.scheduler.Wait()
}

func (c *Controller) tick() {
	c.mu.Lock()
	ctx := c.tickCtx
	c.mu.Unlock()
	c.reconciler.Tick(ctx)
}

// stateErr reports why the controller cannot take a settings change.
// c.mu must be held.
func (c *Controller) stateErr() error {
	switch c.state {
	case domain.StatePolling:
		return nil
	case domain.StateDisposed:
		return domain.ErrControllerDisposed
	default:
		return domain.ErrControllerNotPolling
	}
}
