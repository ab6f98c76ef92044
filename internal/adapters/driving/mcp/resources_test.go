package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docwatch/internal/core/domain"
)

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleReadmeResource(t *testing.T) {
	ctx := context.Background()

	t.Run("prefers the controller's latest snapshot", func(t *testing.T) {
		docs := &mockDocumentService{err: errors.New("should not fetch")}
		syncCtl := &mockSyncController{latest: &domain.DocumentSnapshot{Version: "a1", Content: "cached"}}
		server, err := NewServer(&Ports{Document: docs, Sync: syncCtl})
		require.NoError(t, err)

		result, err := server.handleReadmeResource(ctx, makeReadResourceRequest("docwatch://readme"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "cached", result.Contents[0].Text)
		assert.Equal(t, "text/markdown", result.Contents[0].MIMEType)
	})

	t.Run("fetches when nothing synced yet", func(t *testing.T) {
		docs := &mockDocumentService{snapshot: &domain.DocumentSnapshot{Version: "b2", Content: "fresh"}}
		server, err := NewServer(&Ports{Document: docs, Sync: &mockSyncController{}})
		require.NoError(t, err)

		result, err := server.handleReadmeResource(ctx, makeReadResourceRequest("docwatch://readme"))

		require.NoError(t, err)
		assert.Equal(t, "fresh", result.Contents[0].Text)
	})

	t.Run("fetch failure", func(t *testing.T) {
		docs := &mockDocumentService{err: errors.New("offline")}
		server, err := NewServer(&Ports{Document: docs})
		require.NoError(t, err)

		_, err = server.handleReadmeResource(ctx, makeReadResourceRequest("docwatch://readme"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "fetching document")
	})
}

func TestServer_handleStatusResource(t *testing.T) {
	ctx := context.Background()

	t.Run("settings and sync state", func(t *testing.T) {
		settings := &mockSettingsService{status: &domain.SettingsStatus{
			Username:    "octo",
			TokenMasked: "ghp_********abcd",
			Repo:        "notes",
			Path:        "README.md",
			Branch:      "main",
			IntervalMS:  5000,
		}}
		syncCtl := &mockSyncController{state: domain.SyncState{
			LastVersion:    "abc",
			HasVersion:     true,
			IsPolling:      true,
			ActiveInterval: 5 * time.Second,
			State:          domain.StatePolling,
		}}
		server, err := NewServer(&Ports{Document: &mockDocumentService{}, Settings: settings, Sync: syncCtl})
		require.NoError(t, err)

		result, err := server.handleStatusResource(ctx, makeReadResourceRequest("docwatch://status"))
		require.NoError(t, err)

		var got map[string]map[string]any
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &got))
		assert.Equal(t, "ghp_********abcd", got["settings"]["token_masked"])
		assert.Equal(t, "polling", got["sync"]["state"])
		assert.Equal(t, true, got["sync"]["polling"])
		assert.InDelta(t, 5000, got["sync"]["interval_ms"], 0)
		assert.Equal(t, "abc", got["sync"]["version"])
	})

	t.Run("no optional ports", func(t *testing.T) {
		server, err := NewServer(&Ports{Document: &mockDocumentService{}})
		require.NoError(t, err)

		result, err := server.handleStatusResource(ctx, makeReadResourceRequest("docwatch://status"))

		require.NoError(t, err)
		assert.Equal(t, "{}", result.Contents[0].Text)
	})

	t.Run("settings failure", func(t *testing.T) {
		settings := &mockSettingsService{err: errors.New("bad toml")}
		server, err := NewServer(&Ports{Document: &mockDocumentService{}, Settings: settings})
		require.NoError(t, err)

		_, err = server.handleStatusResource(ctx, makeReadResourceRequest("docwatch://status"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading settings")
	})
}

func TestServer_handleHistoryResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil history service returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Document: &mockDocumentService{}})
		require.NoError(t, err)

		result, err := server.handleHistoryResource(ctx, makeReadResourceRequest("docwatch://history"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns records", func(t *testing.T) {
		start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		history := &mockHistoryService{records: []domain.CycleRecord{{
			ID:        "rec-1",
			StartedAt: start,
			EndedAt:   start.Add(250 * time.Millisecond),
			Outcome:   domain.OutcomeFailed,
			Error:     "HTTP 500",
		}}}
		server, err := NewServer(&Ports{Document: &mockDocumentService{}, History: history})
		require.NoError(t, err)

		result, err := server.handleHistoryResource(ctx, makeReadResourceRequest("docwatch://history"))
		require.NoError(t, err)

		assert.Equal(t, historyLimit, history.limit)
		text := result.Contents[0].Text
		assert.Contains(t, text, `"id": "rec-1"`)
		assert.Contains(t, text, `"duration_ms": 250`)
		assert.Contains(t, text, `"outcome": "failed"`)
		assert.Contains(t, text, `"error": "HTTP 500"`)
		assert.NotContains(t, text, `"version"`)
	})

	t.Run("list failure", func(t *testing.T) {
		history := &mockHistoryService{err: errors.New("db locked")}
		server, err := NewServer(&Ports{Document: &mockDocumentService{}, History: history})
		require.NoError(t, err)

		_, err = server.handleHistoryResource(ctx, makeReadResourceRequest("docwatch://history"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing history")
	})
}
