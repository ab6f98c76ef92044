package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docwatch/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for docwatch resources.
	uriScheme = "docwatch://"

	// historyLimit caps the history resource.
	historyLimit = 20
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "readme",
		Name:        "readme",
		Description: "Current content of the watched document",
		MIMEType:    "text/markdown",
	}, s.handleReadmeResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "status",
		Description: "Settings and sync state, with the token masked",
		MIMEType:    "application/json",
	}, s.handleStatusResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "history",
		Name:        "history",
		Description: "Most recent reconciliation cycles",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)
}

// handleReadmeResource serves the last synced content, or fetches it.
func (s *Server) handleReadmeResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	var snap *domain.DocumentSnapshot
	if s.ports.Sync != nil {
		snap = s.ports.Sync.Latest()
	}
	if snap == nil {
		fetched, err := s.ports.Document.Fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching document: %w", err)
		}
		snap = fetched
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     snap.Content,
		}},
	}, nil
}

type statusInfo struct {
	Settings *domain.SettingsStatus `json:"settings,omitempty"`
	Sync     *syncInfo              `json:"sync,omitempty"`
}

type syncInfo struct {
	State      string `json:"state"`
	Polling    bool   `json:"polling"`
	IntervalMS int64  `json:"interval_ms"`
	Version    string `json:"version,omitempty"`
}

// handleStatusResource returns the masked settings and the sync state.
func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	var info statusInfo

	if s.ports.Settings != nil {
		st, err := s.ports.Settings.Status(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading settings: %w", err)
		}
		info.Settings = st
	}
	if s.ports.Sync != nil {
		st := s.ports.Sync.State()
		info.Sync = &syncInfo{
			State:      string(st.State),
			Polling:    st.IsPolling,
			IntervalMS: st.ActiveInterval.Milliseconds(),
			Version:    st.LastVersion.String(),
		}
	}

	return jsonResult(req.Params.URI, info)
}

type historyEntry struct {
	ID         string `json:"id"`
	StartedAt  string `json:"started_at"`
	DurationMS int64  `json:"duration_ms"`
	Outcome    string `json:"outcome"`
	Version    string `json:"version,omitempty"`
	Error      string `json:"error,omitempty"`
}

// handleHistoryResource returns the most recent cycles, newest first.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	records, err := s.ports.History.Recent(ctx, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}

	entries := make([]historyEntry, len(records))
	for i, r := range records {
		entries[i] = historyEntry{
			ID:         r.ID,
			StartedAt:  r.StartedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			DurationMS: r.Duration().Milliseconds(),
			Outcome:    string(r.Outcome),
			Version:    r.Version.String(),
			Error:      r.Error,
		}
	}

	return jsonResult(req.Params.URI, entries)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
