package tui

import "errors"

// ErrMissingSyncController is returned when the sync controller is not provided.
var ErrMissingSyncController = errors.New("tui: sync controller is required")

// ErrMissingSettingsService is returned when the settings service is not provided.
var ErrMissingSettingsService = errors.New("tui: settings service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
