package services

import (
	"sync"

	"github.com/custodia-labs/docwatch/internal/core/domain"
)

// VersionTracker holds the last observed version marker.
// The marker only ever moves from absent to a value, or from one value to a
// different one.
type VersionTracker struct {
	mu      sync.RWMutex
	current domain.VersionMarker
	has     bool
}

// NewVersionTracker creates a tracker with no observed version.
func NewVersionTracker() *VersionTracker {
	return &VersionTracker{}
}

// Observe commits marker if it differs from the stored one.
func (t *VersionTracker) Observe(marker domain.VersionMarker) domain.ChangeKind {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.has && t.current == marker {
		return domain.Unchanged
	}
	t.current = marker
	t.has = true
	return domain.Changed
}

// Current returns the last observed marker and whether one exists.
func (t *VersionTracker) Current() (domain.VersionMarker, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current, t.has
}
