package services

import (
	"sync"
	"time"

	"github.com/custodia-labs/docwatch/internal/core/domain"
	"github.com/custodia-labs/docwatch/internal/logger"
)

// Ticker delivers ticks on a fixed cadence.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a Ticker for an interval.
type TickerFactory func(d time.Duration) Ticker

type systemTicker struct {
	t *time.Ticker
}

func (s systemTicker) C() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()               { s.t.Stop() }

// NewSystemTicker wraps time.NewTicker.
func NewSystemTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

// armedTimer is one generation of the polling timer. A tick is only
// delivered while its generation is the scheduler's armed one.
type armedTimer struct {
	ticker   Ticker
	stopCh   chan struct{}
	interval time.Duration
}

// PollScheduler owns at most one recurring timer.
// Each tick invokes the callback on its own goroutine; overlap between
// callbacks is the callback's concern.
type PollScheduler struct {
	newTicker TickerFactory

	mu    sync.Mutex
	armed *armedTimer
	wg    sync.WaitGroup
}

// NewPollScheduler creates a scheduler backed by time.Ticker.
func NewPollScheduler() *PollScheduler {
	return NewPollSchedulerWithTicker(NewSystemTicker)
}

// NewPollSchedulerWithTicker creates a scheduler with a custom ticker source.
func NewPollSchedulerWithTicker(factory TickerFactory) *PollScheduler {
	if factory == nil {
		factory = NewSystemTicker
	}
	return &PollScheduler{newTicker: factory}
}

// Start arms a timer. It returns domain.ErrSchedulerArmed if one is already
// armed; use Restart to replace it.
func (s *PollScheduler) Start(interval time.Duration, callback func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.armed != nil {
		return domain.ErrSchedulerArmed
	}
	s.arm(interval, callback)
	return nil
}

// Restart cancels any armed timer and arms a new one. Once Restart returns
// the previous timer delivers no further callbacks; a callback that was
// already running is left to finish.
func (s *PollScheduler) Restart(interval time.Duration, callback func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disarm()
	s.arm(interval, callback)
}

// Stop cancels the armed timer. It is a no-op when nothing is armed.
// Running callbacks are not interrupted; use Wait to block on them.
func (s *PollScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.armed != nil {
		logger.Debug("scheduler stopped", "interval", s.armed.interval)
	}
	s.disarm()
}

// Armed reports whether a timer is armed.
func (s *PollScheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed != nil
}

// Interval returns the armed interval, or 0 when not armed.
func (s *PollScheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.armed == nil {
		return 0
	}
	return s.armed.interval
}

// Wait blocks until every callback started so far has returned.
func (s *PollScheduler) Wait() {
	s.wg.Wait()
}

// arm must be called with mu held and nothing armed.
func (s *PollScheduler) arm(interval time.Duration, callback func()) {
	interval = domain.ClampPollInterval(interval)
	t := &armedTimer{
		ticker:   s.newTicker(interval),
		stopCh:   make(chan struct{}),
		interval: interval,
	}
	s.armed = t
	logger.Debug("scheduler armed", "interval", interval)

	go s.loop(t, callback)
}

// disarm must be called with mu held.
func (s *PollScheduler) disarm() {
	if s.armed == nil {
		return
	}
	s.armed.ticker.Stop()
	close(s.armed.stopCh)
	s.armed = nil
}

func (s *PollScheduler) loop(t *armedTimer, callback func()) {
	for {
		select {
		case <-t.stopCh:
			return
		case <-t.ticker.C():
			if !s.fire(t, callback) {
				return
			}
		}
	}
}

// fire starts callback if t is still the armed generation.
func (s *PollScheduler) fire(t *armedTimer, callback func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.armed != t {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		callback()
	}()
	return true
}
