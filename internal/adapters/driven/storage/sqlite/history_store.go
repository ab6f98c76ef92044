package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docwatch/internal/core/domain"
	"github.com/custodia-labs/docwatch/internal/core/ports/driven"
)

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// historyStore implements driven.CycleHistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.CycleHistoryStore = (*historyStore)(nil)

// Record stores a completed cycle, assigning an ID when missing.
func (s *historyStore) Record(ctx context.Context, rec domain.CycleRecord) error {
	if rec.Outcome == "" {
		return domain.ErrInvalidInput
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_cycles (id, started_at, ended_at, outcome, version, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID,
		formatTime(rec.StartedAt),
		formatTime(rec.EndedAt),
		string(rec.Outcome),
		nullString(rec.Version.String()),
		nullString(rec.Error))
	if err != nil {
		return fmt.Errorf("recording cycle: %w", err)
	}
	return nil
}

// List returns recent cycles, most recent first. limit <= 0 returns all.
func (s *historyStore) List(ctx context.Context, limit int) ([]domain.CycleRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, started_at, ended_at, outcome, version, error
		FROM sync_cycles
		ORDER BY started_at DESC, seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying cycle history: %w", err)
	}
	defer rows.Close()

	var records []domain.CycleRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cycle history: %w", err)
	}
	return records, nil
}

// Prune keeps the most recent keep cycles.
func (s *historyStore) Prune(ctx context.Context, keep int) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM sync_cycles
		WHERE seq NOT IN (
			SELECT seq FROM sync_cycles
			ORDER BY started_at DESC, seq DESC
			LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning cycle history: %w", err)
	}
	return nil
}

func scanCycle(rows *sql.Rows) (*domain.CycleRecord, error) {
	var rec domain.CycleRecord
	var startedAt, endedAt, outcome string
	var version, errMsg sql.NullString

	if err := rows.Scan(&rec.ID, &startedAt, &endedAt, &outcome, &version, &errMsg); err != nil {
		return nil, fmt.Errorf("scanning cycle: %w", err)
	}

	rec.StartedAt = parseTime(startedAt)
	rec.EndedAt = parseTime(endedAt)
	rec.Outcome = domain.CycleOutcome(outcome)
	if version.Valid {
		rec.Version = domain.VersionMarker(version.String)
	}
	if errMsg.Valid {
		rec.Error = errMsg.String
	}
	return &rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
