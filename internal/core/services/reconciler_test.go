package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docwatch/internal/core/domain"
)

func newTestReconciler(source *scriptedSource) (*Reconciler, *recordingSink, *VersionTracker, *memoryHistory) {
	sink := &recordingSink{}
	tracker := NewVersionTracker()
	history := &memoryHistory{}
	return NewReconciler(source, sink, tracker, history), sink, tracker, history
}

func TestReconciler_ShowsOnlyOnChange(t *testing.T) {
	source := newScriptedSource(
		ok("v1", "hello"),
		ok("v1", "hello"),
		ok("v2", "world"),
	)
	r, sink, tracker, _ := newTestReconciler(source)
	ctx := context.Background()

	res := r.RunOnce(ctx)
	assert.Equal(t, domain.OutcomeUpdated, res.Outcome)
	require.NotNil(t, res.Snapshot)
	assert.Equal(t, "hello", res.Snapshot.Content)

	res = r.RunOnce(ctx)
	assert.Equal(t, domain.OutcomeUnchanged, res.Outcome)
	assert.False(t, res.Skipped())

	res = r.RunOnce(ctx)
	assert.Equal(t, domain.OutcomeUpdated, res.Outcome)

	assert.Equal(t, []string{"hello", "world"}, sink.shown())
	current, _ := tracker.Current()
	assert.Equal(t, domain.VersionMarker("v2"), current)
	assert.Equal(t, "world", r.Latest().Content)
}

func TestReconciler_FailureIsolation(t *testing.T) {
	source := newScriptedSource(
		ok("v1", "hello"),
		fail(domain.NewFetchError(500, "server exploded", nil)),
		ok("v1", "hello"),
	)
	r, sink, tracker, _ := newTestReconciler(source)
	ctx := context.Background()

	r.RunOnce(ctx)

	res := r.RunOnce(ctx)
	assert.Equal(t, domain.OutcomeFailed, res.Outcome)
	assert.Equal(t, "server exploded", res.Reason)
	current, _ := tracker.Current()
	assert.Equal(t, domain.VersionMarker("v1"), current, "failure must not touch the tracker")

	res = r.RunOnce(ctx)
	assert.Equal(t, domain.OutcomeUnchanged, res.Outcome)

	assert.Equal(t, []string{"hello"}, sink.shown())
	assert.Equal(t, []string{"server exploded"}, sink.errorMessages())
}

func TestReconciler_PlainErrorBecomesFetchError(t *testing.T) {
	source := newScriptedSource(fail(errors.New("dial tcp: connection refused")))
	r, sink, _, _ := newTestReconciler(source)

	res := r.RunOnce(context.Background())

	assert.Equal(t, domain.OutcomeFailed, res.Outcome)
	assert.Equal(t, "dial tcp: connection refused", res.Reason)
	assert.NotNil(t, domain.AsFetchError(res.Err))
	assert.Len(t, sink.errorMessages(), 1)
}

type panickingSource struct{}

func (panickingSource) FetchDocument(context.Context) (*domain.DocumentSnapshot, error) {
	panic("boom")
}

func TestReconciler_RecoversPanickingSource(t *testing.T) {
	sink := &recordingSink{}
	r := NewReconciler(panickingSource{}, sink, NewVersionTracker(), nil)

	res := r.RunOnce(context.Background())

	assert.Equal(t, domain.OutcomeFailed, res.Outcome)
	assert.Contains(t, res.Reason, "panicked")

	// the flag is released after a panic
	res = r.RunOnce(context.Background())
	assert.Equal(t, domain.OutcomeFailed, res.Outcome)
	assert.False(t, res.Skipped())
}

type nilSource struct{}

func (nilSource) FetchDocument(context.Context) (*domain.DocumentSnapshot, error) {
	return nil, nil
}

func TestReconciler_NilSnapshotFails(t *testing.T) {
	r := NewReconciler(nilSource{}, &recordingSink{}, NewVersionTracker(), nil)

	res := r.RunOnce(context.Background())

	assert.Equal(t, domain.OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, domain.ErrInvalidVersion)
}

func TestReconciler_SingleFlight(t *testing.T) {
	source := newScriptedSource(ok("v1", "hello"))
	source.gate = make(chan struct{})
	source.started = make(chan struct{}, 4)
	r, sink, _, history := newTestReconciler(source)
	ctx := context.Background()

	first := make(chan domain.PollCycleResult, 1)
	go func() { first <- r.RunOnce(ctx) }()
	<-source.started

	// a tick while the fetch is pending is skipped at once
	tick := r.Tick(ctx)
	assert.True(t, tick.Skipped())
	assert.Equal(t, domain.SkipInFlight, tick.Skip)
	assert.Equal(t, domain.OutcomeUnchanged, tick.Outcome)

	// a manual run waits for the flag to clear
	second := make(chan domain.PollCycleResult, 1)
	go func() { second <- r.RunOnce(ctx) }()

	select {
	case <-second:
		t.Fatal("manual run returned while the first fetch was pending")
	case <-time.After(20 * time.Millisecond):
	}

	source.gate <- struct{}{}

	res := <-first
	assert.Equal(t, domain.OutcomeUpdated, res.Outcome)

	res = <-second
	assert.Equal(t, domain.SkipInFlight, res.Skip)

	assert.Equal(t, 1, source.callCount(), "only one fetch issued")
	assert.Equal(t, []string{"hello"}, sink.shown())
	assert.Equal(t, []domain.CycleOutcome{domain.OutcomeUpdated}, history.outcomes(), "skips are not recorded")
}

func TestReconciler_DisposedDiscardsInFlightResult(t *testing.T) {
	source := newScriptedSource(ok("v1", "hello"))
	source.gate = make(chan struct{})
	source.started = make(chan struct{}, 1)
	r, sink, tracker, history := newTestReconciler(source)

	done := make(chan domain.PollCycleResult, 1)
	go func() { done <- r.RunOnce(context.Background()) }()
	<-source.started

	r.MarkDisposed()
	source.gate <- struct{}{}

	res := <-done
	assert.Equal(t, domain.SkipDisposed, res.Skip)
	assert.Empty(t, sink.shown())
	_, has := tracker.Current()
	assert.False(t, has)
	assert.Empty(t, history.outcomes())

	res = r.RunOnce(context.Background())
	assert.Equal(t, domain.SkipDisposed, res.Skip)
	assert.Equal(t, 1, source.callCount())
}

func TestReconciler_RecordsHistory(t *testing.T) {
	source := newScriptedSource(
		ok("v1", "hello"),
		ok("v1", "hello"),
		fail(domain.NewFetchError(404, "Not Found", nil)),
	)
	r, _, _, history := newTestReconciler(source)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	r.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}
	ctx := context.Background()

	r.RunOnce(ctx)
	r.RunOnce(ctx)
	r.RunOnce(ctx)

	records, err := history.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)

	failed := records[0]
	assert.Equal(t, domain.OutcomeFailed, failed.Outcome)
	assert.Equal(t, "Not Found", failed.Error)
	assert.Equal(t, domain.VersionMarker("v1"), failed.Version)
	assert.Equal(t, time.Second, failed.Duration())

	assert.Equal(t, domain.OutcomeUnchanged, records[1].Outcome)
	assert.Equal(t, domain.OutcomeUpdated, records[2].Outcome)
}

func TestReconciler_HistoryErrorDoesNotFailCycle(t *testing.T) {
	source := newScriptedSource(ok("v1", "hello"))
	sink := &recordingSink{}
	history := &memoryHistory{err: errors.New("disk full")}
	r := NewReconciler(source, sink, NewVersionTracker(), history)

	res := r.RunOnce(context.Background())

	assert.Equal(t, domain.OutcomeUpdated, res.Outcome)
	assert.Equal(t, []string{"hello"}, sink.shown())
}
