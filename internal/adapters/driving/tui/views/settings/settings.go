// Package settings provides the settings panel for the TUI.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docwatch/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docwatch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docwatch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docwatch/internal/core/domain"
	"github.com/custodia-labs/docwatch/internal/core/ports/driving"
)

// Field is an editable row of the panel.
type Field int

const (
	FieldUsername Field = iota
	FieldToken
	FieldRepo
	FieldInterval
)

// fields lists the rows in display order.
var fields = []Field{FieldUsername, FieldToken, FieldRepo, FieldInterval}

// String returns the row label.
func (f Field) String() string {
	switch f {
	case FieldUsername:
		return "Username"
	case FieldToken:
		return "Token"
	case FieldRepo:
		return "Repository"
	case FieldInterval:
		return "Interval"
	default:
		return "unknown"
	}
}

var errNoService = errors.New("settings service not available")

// View is the settings panel. It lists the masked settings and edits one
// field at a time.
type View struct {
	styles          *styles.Styles
	keymap          *keymap.KeyMap
	settingsService driving.SettingsService
	ctx             context.Context

	status *domain.SettingsStatus
	err    error

	selected int
	editing  bool
	input    textinput.Model

	width  int
	height int
}

// NewView creates a settings panel.
func NewView(s *styles.Styles, km *keymap.KeyMap, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	return &View{
		styles:          s,
		keymap:          km,
		settingsService: settingsService,
		ctx:             context.Background(),
		input:           ti,
		width:           80,
		height:          24,
	}
}

// WithContext sets the context used by save commands.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetStatus replaces the settings shown.
func (v *View) SetStatus(st *domain.SettingsStatus) {
	v.status = st
}

// Saved records the outcome of a save. A successful save closes the editor.
func (v *View) Saved(err error) {
	v.err = err
	if err == nil {
		v.stopEditing()
	}
}

// Update handles key input.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if !v.editing {
			return v, nil
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	k := keyMsg.String()
	if v.editing {
		switch {
		case keymap.Matches(k, v.keymap.Cancel):
			v.stopEditing()
			v.err = nil
			return v, nil
		case keymap.Matches(k, v.keymap.Confirm):
			return v, v.save(v.Selected(), v.input.Value())
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(k, v.keymap.Cancel), keymap.Matches(k, v.keymap.Quit):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewDocument}
		}
	case keymap.Matches(k, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case keymap.Matches(k, v.keymap.Down):
		if v.selected < len(fields)-1 {
			v.selected++
		}
	case keymap.Matches(k, v.keymap.Confirm):
		return v, v.startEditing()
	}
	return v, nil
}

func (v *View) startEditing() tea.Cmd {
	v.editing = true
	v.err = nil

	field := v.Selected()
	v.input.EchoMode = textinput.EchoNormal
	v.input.Placeholder = ""
	value := ""
	switch field {
	case FieldUsername:
		if v.status != nil && !strings.HasPrefix(v.status.Username, "(") {
			value = v.status.Username
		}
	case FieldToken:
		// The stored token is never shown; an empty value clears it.
		v.input.EchoMode = textinput.EchoPassword
		v.input.Placeholder = "new token, empty to clear"
	case FieldRepo:
		v.input.Placeholder = domain.DefaultRepo
		if v.status != nil {
			value = v.status.Repo
		}
	case FieldInterval:
		v.input.Placeholder = "milliseconds or a duration like 30s"
		if v.status != nil {
			value = strconv.FormatInt(v.status.IntervalMS, 10)
		}
	}
	v.input.SetValue(value)
	v.input.CursorEnd()
	return v.input.Focus()
}

func (v *View) stopEditing() {
	v.editing = false
	v.input.SetValue("")
	v.input.Blur()
}

// save returns a command that persists one field.
func (v *View) save(field Field, raw string) tea.Cmd {
	name := field.String()
	ctx := v.ctx
	svc := v.settingsService

	if field == FieldInterval {
		interval, err := domain.ParsePollInterval(raw)
		if err != nil {
			return func() tea.Msg {
				return messages.SettingSaved{Field: name, Err: err}
			}
		}
		return func() tea.Msg {
			if svc == nil {
				return messages.SettingSaved{Field: name, Err: errNoService}
			}
			if err := svc.SetPollInterval(ctx, interval); err != nil {
				return messages.SettingSaved{Field: name, Err: err}
			}
			return messages.SettingSaved{Field: name, Interval: &interval}
		}
	}

	value := strings.TrimSpace(raw)
	var update domain.SettingsUpdate
	switch field {
	case FieldUsername:
		update.Username = &value
	case FieldToken:
		update.Token = &value
	case FieldRepo:
		update.Repo = &value
	}
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingSaved{Field: name, Err: errNoService}
		}
		return messages.SettingSaved{Field: name, Err: svc.Update(ctx, update)}
	}
}

// View renders the panel.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.status == nil {
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		b.WriteString("\n")
	} else {
		for i, field := range fields {
			indicator := "  "
			if i == v.selected {
				indicator = "> "
			}
			line := fmt.Sprintf("%s%-11s %s", indicator, field.String()+":", v.value(field))
			if i == v.selected {
				b.WriteString(v.styles.Selected.Render(line))
			} else {
				b.WriteString(v.styles.Normal.Render(line))
			}
			b.WriteString("\n")
		}
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %-11s %s@%s", "File:", v.status.Path, v.status.Branch)))
		b.WriteString("\n")
	}

	if v.editing {
		b.WriteString("\n")
		b.WriteString(v.styles.Prompt.Render(v.Selected().String() + ": "))
		b.WriteString(v.styles.InputField.Render(v.input.View()))
		b.WriteString("\n")
	}

	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) value(field Field) string {
	switch field {
	case FieldUsername:
		return v.status.Username
	case FieldToken:
		return v.status.TokenMasked
	case FieldRepo:
		return v.status.Repo
	case FieldInterval:
		return v.status.Interval().String()
	default:
		return ""
	}
}

func (v *View) renderHelp() string {
	if v.editing {
		return v.styles.Help.Render("[enter] save  [esc] cancel")
	}
	return v.styles.Help.Render("[j/k] navigate  [enter] edit  [esc] back")
}

// Selected returns the highlighted field.
func (v *View) Selected() Field {
	return fields[v.selected]
}

// Editing reports whether a field is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Err returns the last save error.
func (v *View) Err() error {
	return v.err
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	inputWidth := width - 20
	if inputWidth < 10 {
		inputWidth = 10
	}
	v.input.Width = inputWidth
}

// Reset returns the panel to the first row with no editor open.
func (v *View) Reset() {
	v.selected = 0
	v.err = nil
	v.stopEditing()
}
