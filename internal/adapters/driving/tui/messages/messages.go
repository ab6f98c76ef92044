// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"time"

	"github.com/custodia-labs/docwatch/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewDocument shows the live document.
	ViewDocument ViewType = iota
	// ViewEditInterval is the polling interval prompt.
	ViewEditInterval
	// ViewEditRepo is the repository prompt.
	ViewEditRepo
	// ViewHelp lists the keybindings.
	ViewHelp
	// ViewSettings is the settings panel.
	ViewSettings
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewDocument:
		return "document"
	case ViewEditInterval:
		return "edit_interval"
	case ViewEditRepo:
		return "edit_repo"
	case ViewHelp:
		return "help"
	case ViewSettings:
		return "settings"
	default:
		return "unknown"
	}
}

// DocumentShown carries new content delivered by the display sink.
type DocumentShown struct {
	Content string
}

// FetchFailed carries a cycle failure delivered by the display sink.
// The document on screen is left as it is.
type FetchFailed struct {
	Message string
}

// Initialized reports the end of the controller's first cycle.
type Initialized struct {
	Err error
}

// CycleCompleted carries the result of a manual re-sync.
type CycleCompleted struct {
	Result domain.PollCycleResult
}

// StatusLoaded carries the masked settings for the header and status bar.
type StatusLoaded struct {
	Status *domain.SettingsStatus
	Err    error
}

// IntervalApplied signals an interval change was saved and applied.
type IntervalApplied struct {
	Interval time.Duration
	Err      error
}

// RepoApplied signals a repository change was saved and applied.
type RepoApplied struct {
	Repo string
	Err  error
}

// SettingSaved signals one field of the settings panel was saved.
// Interval is set when the polling interval changed.
type SettingSaved struct {
	Field    string
	Interval *time.Duration
	Err      error
}

// SettingsChangedExternally signals the config file was edited elsewhere.
type SettingsChangedExternally struct {
	Settings *domain.AppSettings
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
