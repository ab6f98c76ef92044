package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/docwatch/internal/core/domain"
)

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	snapshot  *domain.DocumentSnapshot
	rateLimit *domain.RateLimitInfo
	err       error
	updated   []string
}

func (m *mockDocumentService) Fetch(_ context.Context) (*domain.DocumentSnapshot, error) {
	return m.snapshot, m.err
}

func (m *mockDocumentService) Update(_ context.Context, content string) (*domain.DocumentSnapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.updated = append(m.updated, content)
	return &domain.DocumentSnapshot{Version: domain.BlobMarker(content), Content: content}, nil
}

func (m *mockDocumentService) RateLimit(_ context.Context) (*domain.RateLimitInfo, error) {
	return m.rateLimit, m.err
}

// mockSyncController is a mock implementation of driving.SyncController.
type mockSyncController struct {
	result   domain.PollCycleResult
	state    domain.SyncState
	latest   *domain.DocumentSnapshot
	applyErr error
	runs     int
	applied  int
}

func (m *mockSyncController) Initialize(_ context.Context) error { return nil }

func (m *mockSyncController) ApplySettingsChange(_ context.Context, _ *time.Duration) error {
	m.applied++
	return m.applyErr
}

func (m *mockSyncController) RunOnce(_ context.Context) domain.PollCycleResult {
	m.runs++
	return m.result
}

func (m *mockSyncController) Dispose() {}

func (m *mockSyncController) State() domain.SyncState { return m.state }

func (m *mockSyncController) Latest() *domain.DocumentSnapshot { return m.latest }

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	status *domain.SettingsStatus
	err    error
}

func (m *mockSettingsService) Get(_ context.Context) (*domain.AppSettings, error) {
	return domain.DefaultAppSettings(), m.err
}

func (m *mockSettingsService) Status(_ context.Context) (*domain.SettingsStatus, error) {
	return m.status, m.err
}

func (m *mockSettingsService) Update(_ context.Context, _ domain.SettingsUpdate) error {
	return m.err
}

func (m *mockSettingsService) SetPollInterval(_ context.Context, _ time.Duration) error {
	return m.err
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	records []domain.CycleRecord
	err     error
	limit   int
}

func (m *mockHistoryService) Recent(_ context.Context, limit int) ([]domain.CycleRecord, error) {
	m.limit = limit
	return m.records, m.err
}
