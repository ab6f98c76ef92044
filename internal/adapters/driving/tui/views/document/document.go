// Package document provides the live document view for the TUI.
package document

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docwatch/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docwatch/internal/adapters/driving/tui/styles"
)

// reserved rows: header, separator, blank, footer, status bar
const reservedRows = 6

// View shows the current document content with scrolling.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	title   string
	target  string
	content string
	lines   []string
	loaded  bool
	changed bool
	err     string

	scrollOffset int
	width        int
	height       int
}

// NewView creates a document view. Nil arguments use the defaults.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles: s,
		keymap: km,
		title:  "README.md",
		width:  80,
		height: 24,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// SetContent replaces the content. The scroll position is kept where the
// new content allows it so a small edit does not jump to the top.
func (v *View) SetContent(content string) {
	v.changed = v.loaded
	v.loaded = true
	v.content = content
	v.err = ""
	v.wrapContent()
	if max := v.maxScrollOffset(); v.scrollOffset > max {
		v.scrollOffset = max
	}
}

// SetError shows a failure line above the content. The content stays.
func (v *View) SetError(message string) {
	v.err = message
}

// ClearError removes the failure line.
func (v *View) ClearError() {
	v.err = ""
}

// SetHeader sets the file name and the target line.
func (v *View) SetHeader(title, target string) {
	if title != "" {
		v.title = title
	}
	v.target = target
}

// Update handles scroll keys.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}

	k := keyMsg.String()
	switch {
	case keymap.Matches(k, v.keymap.Up):
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case keymap.Matches(k, v.keymap.Down):
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case keymap.Matches(k, v.keymap.PageUp):
		v.scrollOffset -= v.visibleLines()
		if v.scrollOffset < 0 {
			v.scrollOffset = 0
		}
	case keymap.Matches(k, v.keymap.PageDown):
		v.scrollOffset += v.visibleLines()
		if max := v.maxScrollOffset(); v.scrollOffset > max {
			v.scrollOffset = max
		}
	case keymap.Matches(k, v.keymap.Top):
		v.scrollOffset = 0
	case keymap.Matches(k, v.keymap.Bottom):
		v.scrollOffset = v.maxScrollOffset()
	}
	v.changed = false
	return v, nil
}

// wrapContent splits content into display lines no wider than the view.
func (v *View) wrapContent() {
	if v.content == "" {
		v.lines = nil
		return
	}

	contentWidth := v.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	rawLines := strings.Split(strings.TrimRight(v.content, "\n"), "\n")
	v.lines = make([]string, 0, len(rawLines))
	for _, line := range rawLines {
		runes := []rune(line)
		for len(runes) > contentWidth {
			v.lines = append(v.lines, string(runes[:contentWidth]))
			runes = runes[contentWidth:]
		}
		v.lines = append(v.lines, string(runes))
	}
}

func (v *View) visibleLines() int {
	available := v.height - reservedRows
	if v.err != "" {
		available--
	}
	if available < 1 {
		available = 1
	}
	return available
}

func (v *View) maxScrollOffset() int {
	maxOffset := len(v.lines) - v.visibleLines()
	if maxOffset < 0 {
		maxOffset = 0
	}
	return maxOffset
}

// View renders the document.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(v.title))
	if v.target != "" {
		b.WriteString("  ")
		b.WriteString(v.styles.Target.Render(v.target))
	}
	if v.changed {
		b.WriteString("  ")
		b.WriteString(v.styles.Changed.Render("changed"))
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", minInt(v.width-4, 60)))
	b.WriteString("\n")

	if v.err != "" {
		b.WriteString(v.styles.Error.Render("! " + v.err))
		b.WriteString("\n")
	}

	if !v.loaded {
		b.WriteString(v.styles.Muted.Render("Waiting for the first fetch..."))
		b.WriteString("\n")
		return b.String()
	}
	if len(v.lines) == 0 {
		b.WriteString(v.styles.Muted.Render("(empty file)"))
		b.WriteString("\n")
		return b.String()
	}

	visible := v.visibleLines()
	for i := v.scrollOffset; i < len(v.lines) && i < v.scrollOffset+visible; i++ {
		b.WriteString(v.styles.Normal.Render(v.lines[i]))
		b.WriteString("\n")
	}

	if len(v.lines) > visible {
		percentage := 0
		if max := v.maxScrollOffset(); max > 0 {
			percentage = v.scrollOffset * 100 / max
		}
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d%%] Line %d-%d of %d",
			percentage,
			v.scrollOffset+1,
			minInt(v.scrollOffset+visible, len(v.lines)),
			len(v.lines))))
		b.WriteString("\n")
	}

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.wrapContent()
	if max := v.maxScrollOffset(); v.scrollOffset > max {
		v.scrollOffset = max
	}
}

// Content returns the document content.
func (v *View) Content() string {
	return v.content
}

// Loaded reports whether any content arrived yet.
func (v *View) Loaded() bool {
	return v.loaded
}

// Changed reports whether the change badge is showing.
func (v *View) Changed() bool {
	return v.changed
}

// Err returns the failure line, if any.
func (v *View) Err() string {
	return v.err
}

// ScrollOffset returns the first visible line index.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
