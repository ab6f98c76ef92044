// Package tui provides an interactive terminal user interface for docwatch.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"context"

	"github.com/custodia-labs/docwatch/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
type Ports struct {
	// Sync owns polling and reconciliation.
	Sync driving.SyncController

	// Settings reads and edits the persisted settings.
	Settings driving.SettingsService

	// Acknowledge is called after the TUI saved settings itself, before the
	// change is applied. A config file watcher uses it to skip its own echo.
	// Optional.
	Acknowledge func(ctx context.Context)
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(sync driving.SyncController, settings driving.SettingsService) *Ports {
	return &Ports{
		Sync:     sync,
		Settings: settings,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Sync == nil {
		return ErrMissingSyncController
	}
	if p.Settings == nil {
		return ErrMissingSettingsService
	}
	return nil
}

func (p *Ports) acknowledge(ctx context.Context) {
	if p.Acknowledge != nil {
		p.Acknowledge(ctx)
	}
}
