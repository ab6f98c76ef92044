// Package input provides the labelled prompt used to edit settings.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docwatch/internal/adapters/driving/tui/styles"
)

// Prompt wraps a bubbles textinput with a label and a validation error line.
type Prompt struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	err       string
	width     int
}

// NewPrompt creates a prompt. A nil styles uses the defaults.
func NewPrompt(s *styles.Styles, label, placeholder string) *Prompt {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 100
	ti.Width = 30

	return &Prompt{
		textinput: ti,
		styles:    s,
		label:     label,
		width:     30,
	}
}

// Open focuses the prompt with an initial value and clears the error.
func (p *Prompt) Open(value string) tea.Cmd {
	p.err = ""
	p.textinput.SetValue(value)
	p.textinput.CursorEnd()
	return p.textinput.Focus()
}

// Close blurs the prompt.
func (p *Prompt) Close() {
	p.textinput.Blur()
	p.err = ""
}

// Update handles input messages.
func (p *Prompt) Update(msg tea.Msg) (*Prompt, tea.Cmd) {
	var cmd tea.Cmd
	p.textinput, cmd = p.textinput.Update(msg)
	return p, cmd
}

// View renders the label, the input box and any validation error.
func (p *Prompt) View() string {
	label := p.styles.Prompt.Render(p.label + ": ")
	box := p.styles.InputField.Render(p.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	row := lipgloss.JoinHorizontal(lipgloss.Center, label, box)
	if p.err == "" {
		return row
	}
	return lipgloss.JoinVertical(lipgloss.Left, row, p.styles.Error.Render(p.err))
}

// Value returns the current input value.
func (p *Prompt) Value() string {
	return p.textinput.Value()
}

// SetError shows a validation error under the input.
func (p *Prompt) SetError(msg string) {
	p.err = msg
}

// Err returns the validation error shown, if any.
func (p *Prompt) Err() string {
	return p.err
}

// Focused returns whether the prompt is focused.
func (p *Prompt) Focused() bool {
	return p.textinput.Focused()
}

// SetWidth sets the width of the prompt.
func (p *Prompt) SetWidth(width int) {
	p.width = width
	inputWidth := width - len(p.label) - 8
	if inputWidth < 10 {
		inputWidth = 10
	}
	p.textinput.Width = inputWidth
}

// Width returns the current width.
func (p *Prompt) Width() int {
	return p.width
}
