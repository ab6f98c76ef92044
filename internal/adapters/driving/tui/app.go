package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docwatch/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docwatch/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docwatch/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docwatch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docwatch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docwatch/internal/adapters/driving/tui/views/document"
	"github.com/custodia-labs/docwatch/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/docwatch/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	documentView   *document.View
	statusBar      *status.Bar
	intervalPrompt *input.Prompt
	repoPrompt     *input.Prompt
	settingsView   *settings.View
	help           help.Model

	// currentView tracks which view is active.
	currentView messages.ViewType

	// settings is the last masked settings view loaded.
	settings *domain.SettingsStatus

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has received its first window size.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	h := help.New()
	h.ShowAll = true

	return &App{
		ports:          ports,
		ctx:            context.Background(),
		styles:         s,
		keymap:         km,
		documentView:   document.NewView(s, km),
		statusBar:      status.NewBar(s, km),
		intervalPrompt: input.NewPrompt(s, "Interval", "milliseconds or a duration like 30s"),
		repoPrompt:     input.NewPrompt(s, "Repository", domain.DefaultRepo),
		settingsView:   settings.NewView(s, km, ports.Settings),
		help:           h,
		currentView:    messages.ViewDocument,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.settingsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It starts the controller and loads the settings header.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("docwatch"),
		a.initialize(),
		a.loadStatus(),
	)
}

func (a *App) initialize() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return messages.Initialized{Err: a.ports.Sync.Initialize(ctx)}
	}
}

func (a *App) loadStatus() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		st, err := a.ports.Settings.Status(ctx)
		return messages.StatusLoaded{Status: st, Err: err}
	}
}

func (a *App) refresh() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return messages.CycleCompleted{Result: a.ports.Sync.RunOnce(ctx)}
	}
}

func (a *App) applyInterval(raw string) tea.Cmd {
	interval, err := domain.ParsePollInterval(raw)
	if err != nil {
		return func() tea.Msg {
			return messages.IntervalApplied{Err: err}
		}
	}

	ctx := a.ctx
	return func() tea.Msg {
		if err := a.ports.Settings.SetPollInterval(ctx, interval); err != nil {
			return messages.IntervalApplied{Interval: interval, Err: err}
		}
		a.ports.acknowledge(ctx)
		if err := a.ports.Sync.ApplySettingsChange(ctx, &interval); err != nil {
			return messages.IntervalApplied{Interval: interval, Err: err}
		}
		return messages.IntervalApplied{Interval: interval}
	}
}

func (a *App) applyRepo(raw string) tea.Cmd {
	repo := strings.TrimSpace(raw)
	ctx := a.ctx
	return func() tea.Msg {
		if err := a.ports.Settings.Update(ctx, domain.SettingsUpdate{Repo: &repo}); err != nil {
			return messages.RepoApplied{Repo: repo, Err: err}
		}
		a.ports.acknowledge(ctx)
		if err := a.ports.Sync.ApplySettingsChange(ctx, nil); err != nil {
			return messages.RepoApplied{Repo: repo, Err: err}
		}
		return messages.RepoApplied{Repo: repo}
	}
}

// applySaved pushes a saved settings field into the running controller.
func (a *App) applySaved(interval *time.Duration) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		a.ports.acknowledge(ctx)
		if err := a.ports.Sync.ApplySettingsChange(ctx, interval); err != nil {
			return messages.ErrorOccurred{Err: err}
		}
		return nil
	}
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.DocumentShown:
		a.documentView.SetContent(msg.Content)
		if a.statusBar.State() == status.StateError || a.statusBar.State() == status.StateSyncing {
			a.statusBar.SetState(status.StatePolling)
			a.statusBar.SetMessage("")
		}
		a.syncBar()
		return a, nil

	case messages.FetchFailed:
		a.documentView.SetError(msg.Message)
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage(msg.Message)
		return a, nil

	case messages.Initialized:
		if msg.Err != nil {
			a.err = msg.Err
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage(msg.Err.Error())
			return a, nil
		}
		a.syncBar()
		return a, nil

	case messages.CycleCompleted:
		a.applyCycle(msg.Result)
		return a, nil

	case messages.StatusLoaded:
		if msg.Err != nil {
			a.err = msg.Err
			a.statusBar.SetMessage("settings: " + msg.Err.Error())
			return a, nil
		}
		a.settings = msg.Status
		a.settingsView.SetStatus(msg.Status)
		a.documentView.SetHeader(msg.Status.Path, targetLine(msg.Status))
		return a, nil

	case messages.IntervalApplied:
		if msg.Err != nil {
			a.intervalPrompt.SetError(msg.Err.Error())
			return a, nil
		}
		a.closePrompt()
		a.statusBar.SetMessage("interval set to " + msg.Interval.String())
		a.syncBar()
		return a, a.loadStatus()

	case messages.RepoApplied:
		if msg.Err != nil {
			a.repoPrompt.SetError(msg.Err.Error())
			return a, nil
		}
		a.closePrompt()
		a.documentView.ClearError()
		repo := msg.Repo
		if repo == "" {
			repo = domain.DefaultRepo
		}
		a.statusBar.SetMessage("watching " + repo)
		a.syncBar()
		return a, a.loadStatus()

	case messages.SettingSaved:
		a.settingsView.Saved(msg.Err)
		if msg.Err != nil {
			return a, nil
		}
		a.documentView.ClearError()
		a.statusBar.SetMessage(strings.ToLower(msg.Field) + " saved")
		return a, tea.Sequence(a.applySaved(msg.Interval), a.loadStatus())

	case messages.SettingsChangedExternally:
		a.statusBar.SetMessage("settings reloaded")
		a.syncBar()
		return a, a.loadStatus()

	case messages.ViewChanged:
		return a, a.switchView(msg.View)

	case messages.ErrorOccurred:
		a.err = msg.Err
		if msg.Err != nil {
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage(msg.Err.Error())
		}
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages (cursor blink) to the open prompt.
	switch a.currentView {
	case messages.ViewEditInterval:
		a.intervalPrompt, cmd = a.intervalPrompt.Update(msg)
	case messages.ViewEditRepo:
		a.repoPrompt, cmd = a.repoPrompt.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	}
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()

	// Global quit with ctrl+c
	if k == "ctrl+c" {
		return a, tea.Quit
	}

	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewEditInterval, messages.ViewEditRepo:
		prompt := a.activePrompt()
		switch {
		case keymap.Matches(k, a.keymap.Cancel):
			a.closePrompt()
			return a, nil
		case keymap.Matches(k, a.keymap.Confirm):
			if a.currentView == messages.ViewEditInterval {
				return a, a.applyInterval(prompt.Value())
			}
			return a, a.applyRepo(prompt.Value())
		}
		_, cmd = prompt.Update(msg)
		return a, cmd

	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ViewHelp:
		if keymap.Matches(k, a.keymap.Help) || keymap.Matches(k, a.keymap.Cancel) ||
			keymap.Matches(k, a.keymap.Quit) {
			a.currentView = messages.ViewDocument
		}
		return a, nil
	}

	switch {
	case keymap.Matches(k, a.keymap.Quit):
		return a, tea.Quit
	case keymap.Matches(k, a.keymap.Help):
		return a, a.switchView(messages.ViewHelp)
	case keymap.Matches(k, a.keymap.Refresh):
		a.statusBar.SetState(status.StateSyncing)
		a.statusBar.SetMessage("")
		return a, a.refresh()
	case keymap.Matches(k, a.keymap.EditInterval):
		return a, a.switchView(messages.ViewEditInterval)
	case keymap.Matches(k, a.keymap.EditRepo):
		return a, a.switchView(messages.ViewEditRepo)
	case keymap.Matches(k, a.keymap.Settings):
		return a, a.switchView(messages.ViewSettings)
	}

	a.documentView, cmd = a.documentView.Update(msg)
	return a, cmd
}

func (a *App) switchView(view messages.ViewType) tea.Cmd {
	a.currentView = view
	switch view {
	case messages.ViewEditInterval:
		a.statusBar.SetPrompt(true)
		value := ""
		if a.settings != nil {
			value = strconv.FormatInt(a.settings.IntervalMS, 10)
		}
		return a.intervalPrompt.Open(value)
	case messages.ViewEditRepo:
		a.statusBar.SetPrompt(true)
		value := ""
		if a.settings != nil {
			value = a.settings.Repo
		}
		return a.repoPrompt.Open(value)
	case messages.ViewSettings:
		a.settingsView.Reset()
		a.statusBar.SetPrompt(false)
		return a.loadStatus()
	}
	a.statusBar.SetPrompt(false)
	return nil
}

func (a *App) activePrompt() *input.Prompt {
	if a.currentView == messages.ViewEditRepo {
		return a.repoPrompt
	}
	return a.intervalPrompt
}

func (a *App) closePrompt() {
	a.intervalPrompt.Close()
	a.repoPrompt.Close()
	a.statusBar.SetPrompt(false)
	a.currentView = messages.ViewDocument
}

func (a *App) applyCycle(result domain.PollCycleResult) {
	switch {
	case result.Skipped():
		if a.statusBar.State() == status.StateSyncing {
			a.statusBar.SetState(status.StatePolling)
		}
		a.statusBar.SetMessage("re-sync " + result.String())
	case result.Outcome == domain.OutcomeFailed:
		a.err = result.Err
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage(result.Reason)
	default:
		a.documentView.ClearError()
		a.statusBar.SetState(status.StatePolling)
		a.statusBar.SetMessage("re-sync " + result.String())
	}
	a.syncBar()
}

func (a *App) syncBar() {
	a.statusBar.SetSync(a.ports.Sync.State())
}

func targetLine(st *domain.SettingsStatus) string {
	owner := st.Username
	if owner == "" || strings.HasPrefix(owner, "(") {
		owner = "?"
	}
	return fmt.Sprintf("%s/%s@%s", owner, st.Repo, st.Branch)
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var b strings.Builder
	switch a.currentView {
	case messages.ViewHelp:
		b.WriteString(a.viewHelp())
	case messages.ViewEditInterval:
		b.WriteString(a.documentView.View())
		b.WriteString("\n")
		b.WriteString(a.intervalPrompt.View())
	case messages.ViewEditRepo:
		b.WriteString(a.documentView.View())
		b.WriteString("\n")
		b.WriteString(a.repoPrompt.View())
	case messages.ViewSettings:
		b.WriteString(a.settingsView.View())
	default:
		b.WriteString(a.documentView.View())
	}
	b.WriteString("\n")
	b.WriteString(a.statusBar.View())
	return b.String()
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Keys"))
	b.WriteString("\n\n")
	b.WriteString(a.help.View(a.keymap))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Muted.Render("The document re-syncs on its own at the configured interval."))
	b.WriteString("\n")
	b.WriteString(a.styles.Help.Render("[esc] back"))
	return b.String()
}

// Run starts the program and blocks until it exits. The sink is attached
// for the lifetime of the program and the controller is disposed on return.
func (a *App) Run(sink *Sink) error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	if sink != nil {
		// Send blocks until the event loop runs.
		go sink.Attach(p)
	}

	_, err := p.Run()

	if sink != nil {
		sink.Detach()
	}
	a.ports.Sync.Dispose()

	if errors.Is(err, tea.ErrProgramKilled) && a.ctx.Err() != nil {
		return nil
	}
	return err
}

// Notify forwards an external settings change into the running program.
// It returns a func suitable for a config watcher's change hook.
func Notify(sender Sender) func(*domain.AppSettings) {
	return func(s *domain.AppSettings) {
		sender.Send(messages.SettingsChangedExternally{Settings: s})
	}
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// Document returns the document view.
func (a *App) Document() *document.View {
	return a.documentView
}

// StatusBar returns the status bar.
func (a *App) StatusBar() *status.Bar {
	return a.statusBar
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.documentView.SetDimensions(width, height)
	a.statusBar.SetWidth(width)
	a.intervalPrompt.SetWidth(width)
	a.repoPrompt.SetWidth(width)
	a.settingsView.SetDimensions(width, height)
	a.help.Width = width
}
