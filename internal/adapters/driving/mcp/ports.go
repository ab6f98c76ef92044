package mcp

import (
	"github.com/custodia-labs/docwatch/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Document reads and writes the watched document.
	Document driving.DocumentService

	// Sync is the running controller, when the server shares a process with one.
	Sync driving.SyncController

	// Settings exposes the masked settings view.
	Settings driving.SettingsService

	// History lists recorded cycles.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	// Sync, Settings and History are optional
	return nil
}
