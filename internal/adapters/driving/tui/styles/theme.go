// Package styles provides colours and lipgloss styles for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour palette.
type Theme struct {
	Accent  lipgloss.Color
	Info    lipgloss.Color
	Text    lipgloss.Color
	Dim     lipgloss.Color
	Good    lipgloss.Color
	Caution lipgloss.Color
	Bad     lipgloss.Color
	Frame   lipgloss.Color
	BarBG   lipgloss.Color
}

// DefaultTheme returns the default palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:  lipgloss.Color("#7C3AED"),
		Info:    lipgloss.Color("#06B6D4"),
		Text:    lipgloss.Color("#CDD6F4"),
		Dim:     lipgloss.Color("#6C7086"),
		Good:    lipgloss.Color("#A6E3A1"),
		Caution: lipgloss.Color("#F9E2AF"),
		Bad:     lipgloss.Color("#F38BA8"),
		Frame:   lipgloss.Color("#45475A"),
		BarBG:   lipgloss.Color("#181825"),
	}
}

// Styles holds the styles the views render with.
type Styles struct {
	theme *Theme

	// Title is the document header line.
	Title lipgloss.Style
	// Target renders owner/repo:path@branch next to the title.
	Target lipgloss.Style

	Normal  lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	// Selected marks the highlighted row of a list.
	Selected lipgloss.Style

	// Changed flags the banner shown after a new version arrived.
	Changed lipgloss.Style

	Prompt     lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme uses DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title:  lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		Target: lipgloss.NewStyle().Foreground(theme.Info),

		Normal:  lipgloss.NewStyle().Foreground(theme.Text),
		Muted:   lipgloss.NewStyle().Foreground(theme.Dim),
		Error:   lipgloss.NewStyle().Foreground(theme.Bad),
		Success: lipgloss.NewStyle().Foreground(theme.Good),
		Warning: lipgloss.NewStyle().Foreground(theme.Caution),

		Selected: lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),

		Changed: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.BarBG).
			Background(theme.Good).
			Padding(0, 1),

		Prompt: lipgloss.NewStyle().Bold(true).Foreground(theme.Info),
		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Frame).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Dim).
			Background(theme.BarBG).
			Padding(0, 1),
		Help: lipgloss.NewStyle().Foreground(theme.Dim),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette behind these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
