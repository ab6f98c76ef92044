// Package status provides the status bar shown under the document.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docwatch/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docwatch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docwatch/internal/core/domain"
)

// State is the sync phase shown on the left of the bar.
type State string

const (
	StateStarting State = "starting"
	StatePolling  State = "polling"
	StateSyncing  State = "syncing"
	StateError    State = "error"
	StateStopped  State = "stopped"
)

// Bar displays sync state and keybinding hints.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	state    State
	message  string
	interval time.Duration
	version  domain.VersionMarker
	prompt   bool
	width    int
}

// NewBar creates a status bar. Nil arguments use the defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateStarting,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	var parts []string

	switch s.state {
	case StateStarting:
		parts = append(parts, s.styles.Muted.Render("starting..."))
	case StateSyncing:
		parts = append(parts, s.styles.Warning.Render("syncing..."))
	case StatePolling:
		label := "● polling"
		if s.interval > 0 {
			label += " every " + s.interval.String()
		}
		parts = append(parts, s.styles.Success.Render(label))
	case StateStopped:
		parts = append(parts, s.styles.Muted.Render("stopped"))
	case StateError:
		parts = append(parts, s.styles.Error.Render("error"))
	}

	if s.version != "" {
		parts = append(parts, s.styles.Muted.Render("@ "+s.version.Short()))
	}
	if s.message != "" {
		style := s.styles.Normal
		if s.state == StateError {
			style = s.styles.Error
		}
		parts = append(parts, style.Render(s.message))
	}
	return strings.Join(parts, "  ")
}

func (s *Bar) renderRight() string {
	bindings := s.keymap.ShortHelp()
	if s.prompt {
		bindings = s.keymap.PromptHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		hints = append(hints, hint(b))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

func hint(b key.Binding) string {
	h := b.Help()
	return fmt.Sprintf("%s: %s", h.Key, h.Desc)
}

// SetState sets the sync phase.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the sync phase.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets the text after the phase. Empty clears it.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetSync copies the interval and version from the controller state.
func (s *Bar) SetSync(state domain.SyncState) {
	s.interval = state.ActiveInterval
	if state.HasVersion {
		s.version = state.LastVersion
	}
	switch state.State {
	case domain.StatePolling:
		if s.state == StateStarting || s.state == StateStopped {
			s.state = StatePolling
		}
	case domain.StateDisposed:
		s.state = StateStopped
	}
}

// SetPrompt switches the hints to the prompt bindings.
func (s *Bar) SetPrompt(open bool) {
	s.prompt = open
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}
