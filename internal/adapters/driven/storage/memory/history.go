package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/docwatch/internal/core/domain"
	"github.com/custodia-labs/docwatch/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.CycleHistoryStore = (*HistoryStore)(nil)

// HistoryStore keeps cycle records in insertion order.
type HistoryStore struct {
	mu      sync.RWMutex
	records []domain.CycleRecord
}

// NewHistoryStore creates an empty history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

// Record appends a cycle, assigning an ID when missing.
func (s *HistoryStore) Record(_ context.Context, rec domain.CycleRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// List returns up to limit records, newest first. limit <= 0 returns all.
func (s *HistoryStore) List(_ context.Context, limit int) ([]domain.CycleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.CycleRecord, 0, n)
	for i := len(s.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// Prune drops all but the newest keep records.
func (s *HistoryStore) Prune(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if keep < 0 {
		keep = 0
	}
	if len(s.records) > keep {
		s.records = append([]domain.CycleRecord(nil), s.records[len(s.records)-keep:]...)
	}
	return nil
}
