package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/docwatch/internal/core/domain"
)

// --- Fake ticker ---

type fakeTicker struct {
	interval time.Duration
	ch       chan time.Time
	stopped  atomic.Bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               { f.stopped.Store(true) }

// tick delivers one tick and reports whether the scheduler loop accepted it.
func (f *fakeTicker) tick() bool {
	select {
	case f.ch <- time.Now():
		return true
	case <-time.After(50 * time.Millisecond):
		return false
	}
}

type fakeTickers struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (f *fakeTickers) factory(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{interval: d, ch: make(chan time.Time)}
	f.tickers = append(f.tickers, t)
	return t
}

func (f *fakeTickers) last() *fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tickers) == 0 {
		return nil
	}
	return f.tickers[len(f.tickers)-1]
}

func (f *fakeTickers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}

// --- Fake document source ---

type fetchResult struct {
	snap *domain.DocumentSnapshot
	err  error
}

// scriptedSource returns queued results in order and repeats the last one
// once the queue is empty. When gate is set, each fetch blocks until a value
// is received from it.
type scriptedSource struct {
	mu      sync.Mutex
	queue   []fetchResult
	last    *fetchResult
	calls   int
	gate    chan struct{}
	started chan struct{}
}

func newScriptedSource(results ...fetchResult) *scriptedSource {
	return &scriptedSource{queue: results}
}

func ok(version, content string) fetchResult {
	return fetchResult{snap: &domain.DocumentSnapshot{Version: domain.VersionMarker(version), Content: content}}
}

func fail(err error) fetchResult {
	return fetchResult{err: err}
}

func (s *scriptedSource) push(r fetchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, r)
}

func (s *scriptedSource) FetchDocument(ctx context.Context) (*domain.DocumentSnapshot, error) {
	s.mu.Lock()
	s.calls++
	var r fetchResult
	switch {
	case len(s.queue) > 0:
		r = s.queue[0]
		s.queue = s.queue[1:]
		s.last = &r
	case s.last != nil:
		r = *s.last
	default:
		r = fail(domain.NewFetchError(0, "no result scripted", nil))
	}
	gate, started := s.gate, s.started
	s.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, domain.NewFetchError(0, "", ctx.Err())
		}
	}
	if r.err != nil {
		return nil, domain.AsFetchError(r.err)
	}
	return r.snap, nil
}

func (s *scriptedSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// --- Fake display sink ---

type recordingSink struct {
	mu        sync.Mutex
	documents []string
	errors    []string
}

func (r *recordingSink) ShowDocument(content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.documents = append(r.documents, content)
}

func (r *recordingSink) ShowError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, message)
}

func (r *recordingSink) shown() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.documents...)
}

func (r *recordingSink) errorMessages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errors...)
}

// --- Fake history store ---

type memoryHistory struct {
	mu      sync.Mutex
	records []domain.CycleRecord
	err     error
}

func (m *memoryHistory) Record(_ context.Context, rec domain.CycleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memoryHistory) List(_ context.Context, limit int) ([]domain.CycleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.CycleRecord, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0; i-- {
		out = append(out, m.records[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memoryHistory) Prune(_ context.Context, keep int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.records) > keep {
		m.records = m.records[len(m.records)-keep:]
	}
	return nil
}

func (m *memoryHistory) outcomes() []domain.CycleOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.CycleOutcome, len(m.records))
	for i, r := range m.records {
		out[i] = r.Outcome
	}
	return out
}
