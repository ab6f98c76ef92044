package domain

import (
	"fmt"
	"time"
)

// ChangeKind is the verdict of comparing a new marker to the last one.
type ChangeKind int

const (
	// Unchanged means the marker equals the last observed marker.
	Unchanged ChangeKind = iota
	// Changed means the marker differs, including the first observation.
	Changed
)

// String returns the string representation of the change kind.
func (c ChangeKind) String() string {
	if c == Changed {
		return "changed"
	}
	return "unchanged"
}

// CycleOutcome tags a PollCycleResult.
type CycleOutcome string

// Cycle outcomes.
const (
	OutcomeUnchanged CycleOutcome = "unchanged"
	OutcomeUpdated   CycleOutcome = "updated"
	OutcomeFailed    CycleOutcome = "failed"
)

// SkipReason explains why a cycle did no work.
type SkipReason string

// Skip reasons.
const (
	SkipNone SkipReason = ""

	// SkipInFlight means another cycle's fetch had not resolved yet.
	SkipInFlight SkipReason = "in_flight"

	// SkipDisposed means the controller was disposed; any fetched result was discarded.
	SkipDisposed SkipReason = "disposed"
)

// PollCycleResult is the outcome of one reconciliation attempt.
// It is ephemeral and only drives the display sink and diagnostics.
type PollCycleResult struct {
	Outcome CycleOutcome

	// Snapshot is set for OutcomeUpdated.
	Snapshot *DocumentSnapshot

	// Reason is set for OutcomeFailed.
	Reason string
	Err    error

	// Skip is set when the cycle was a no-op. Outcome is then OutcomeUnchanged.
	Skip SkipReason
}

// UnchangedResult reports an observed but unchanged document.
func UnchangedResult() PollCycleResult {
	return PollCycleResult{Outcome: OutcomeUnchanged}
}

// UpdatedResult reports a changed document.
func UpdatedResult(snap *DocumentSnapshot) PollCycleResult {
	return PollCycleResult{Outcome: OutcomeUpdated, Snapshot: snap}
}

// FailedResult reports a failed cycle.
func FailedResult(err error) PollCycleResult {
	fe := AsFetchError(err)
	return PollCycleResult{Outcome: OutcomeFailed, Reason: fe.Message, Err: fe}
}

// SkippedResult reports a cycle that did no work.
func SkippedResult(reason SkipReason) PollCycleResult {
	return PollCycleResult{Outcome: OutcomeUnchanged, Skip: reason}
}

// Skipped reports whether the cycle was a no-op.
func (r PollCycleResult) Skipped() bool {
	return r.Skip != SkipNone
}

// String renders the result for logs and status lines.
func (r PollCycleResult) String() string {
	switch {
	case r.Skipped():
		return fmt.Sprintf("skipped (%s)", r.Skip)
	case r.Outcome == OutcomeUpdated && r.Snapshot != nil:
		return fmt.Sprintf("updated to %s", r.Snapshot.Version.Short())
	case r.Outcome == OutcomeFailed:
		return "failed: " + r.Reason
	default:
		return string(r.Outcome)
	}
}

// ControllerState is the lifecycle state of the sync controller.
type ControllerState string

// Controller states.
const (
	StateUninitialized ControllerState = "uninitialized"
	StatePolling       ControllerState = "polling"
	StateDisposed      ControllerState = "disposed"
)

// SyncState is what the controller knows about the remote document.
type SyncState struct {
	// LastVersion is empty until the first successful observation.
	LastVersion VersionMarker
	HasVersion  bool

	// IsPolling is true iff exactly one scheduler timer is armed.
	IsPolling      bool
	ActiveInterval time.Duration

	State ControllerState
}

// CycleRecord is a persisted reconciliation cycle, kept for history.
type CycleRecord struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	Outcome   CycleOutcome
	Version   VersionMarker
	Error     string
}

// Duration returns how long the cycle took.
func (r CycleRecord) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}
