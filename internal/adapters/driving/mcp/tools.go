package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docwatch/internal/core/domain"
)

// SyncInput is the input schema for the sync_now tool.
type SyncInput struct{}

// SyncOutput is the output schema for the sync_now tool.
type SyncOutput struct {
	Outcome string `json:"outcome"`
	Version string `json:"version,omitempty"`
	Content string `json:"content,omitempty"`
	Skipped string `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// UpdateInput is the input schema for the update_readme tool.
type UpdateInput struct {
	Content string `json:"content" jsonschema:"the full new content of the document"`
}

// UpdateOutput is the output schema for the update_readme tool.
type UpdateOutput struct {
	OK      bool   `json:"ok"`
	SHA     string `json:"sha"`
	Content string `json:"content"`
}

// RateLimitInput is the input schema for the rate_limit tool.
type RateLimitInput struct{}

// RateLimitOutput is the output schema for the rate_limit tool.
type RateLimitOutput struct {
	Remaining int    `json:"remaining"`
	Limit     int    `json:"limit"`
	ResetsAt  string `json:"resets_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_now",
		Description: "Re-read the watched document and report whether it changed",
	}, s.handleSyncNow)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "update_readme",
		Description: "Commit new content for the watched document",
	}, s.handleUpdate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "rate_limit",
		Description: "Report the remaining GitHub API quota",
	}, s.handleRateLimit)
}

// handleSyncNow runs a cycle on the shared controller, or a plain fetch
// when the server runs without one.
func (s *Server) handleSyncNow(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ SyncInput,
) (*mcp.CallToolResult, SyncOutput, error) {
	if s.ports.Sync == nil {
		snap, err := s.ports.Document.Fetch(ctx)
		if err != nil {
			return nil, SyncOutput{}, err
		}
		return nil, SyncOutput{
			Outcome: string(domain.OutcomeUpdated),
			Version: snap.Version.String(),
			Content: snap.Content,
		}, nil
	}

	result := s.ports.Sync.RunOnce(ctx)
	output := SyncOutput{
		Outcome: string(result.Outcome),
		Skipped: string(result.Skip),
	}
	switch result.Outcome {
	case domain.OutcomeUpdated:
		output.Version = result.Snapshot.Version.String()
		output.Content = result.Snapshot.Content
	case domain.OutcomeFailed:
		output.Error = result.Reason
	case domain.OutcomeUnchanged:
		if st := s.ports.Sync.State(); st.HasVersion {
			output.Version = st.LastVersion.String()
		}
	}
	return nil, output, nil
}

// handleUpdate commits new document content.
func (s *Server) handleUpdate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpdateInput,
) (*mcp.CallToolResult, UpdateOutput, error) {
	snap, err := s.ports.Document.Update(ctx, input.Content)
	if err != nil {
		return nil, UpdateOutput{}, err
	}

	// Pick the new version up now instead of at the next tick.
	if s.ports.Sync != nil {
		err := s.ports.Sync.ApplySettingsChange(ctx, nil)
		if err != nil && !errors.Is(err, domain.ErrControllerDisposed) &&
			!errors.Is(err, domain.ErrControllerNotPolling) {
			return nil, UpdateOutput{}, fmt.Errorf("re-syncing after update: %w", err)
		}
	}

	return nil, UpdateOutput{
		OK:      true,
		SHA:     snap.Version.String(),
		Content: snap.Content,
	}, nil
}

// handleRateLimit reports the API quota.
func (s *Server) handleRateLimit(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ RateLimitInput,
) (*mcp.CallToolResult, RateLimitOutput, error) {
	info, err := s.ports.Document.RateLimit(ctx)
	if err != nil {
		return nil, RateLimitOutput{}, err
	}

	output := RateLimitOutput{
		Remaining: info.Remaining,
		Limit:     info.Limit,
	}
	if !info.ResetAt.IsZero() {
		output.ResetsAt = info.ResetAt.UTC().Format(time.RFC3339)
	}
	return nil, output, nil
}
