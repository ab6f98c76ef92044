package cli

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/custodia-labs/docwatch/internal/adapters/driven/configwatch"
	"github.com/custodia-labs/docwatch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docwatch/internal/core/domain"
	"github.com/custodia-labs/docwatch/internal/core/ports/driven"
	"github.com/custodia-labs/docwatch/internal/core/ports/driving"
	"github.com/custodia-labs/docwatch/internal/core/services"
)

// mockDocumentService implements driving.DocumentService for testing.
type mockDocumentService struct {
	snapshot  *domain.DocumentSnapshot
	rateLimit *domain.RateLimitInfo
	err       error
	updated   []string
}

func (m *mockDocumentService) Fetch(_ context.Context) (*domain.DocumentSnapshot, error) {
	return m.snapshot, m.err
}

func (m *mockDocumentService) Update(_ context.Context, content string) (*domain.DocumentSnapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.updated = append(m.updated, content)
	return &domain.DocumentSnapshot{Version: domain.BlobMarker(content), Content: content}, nil
}

func (m *mockDocumentService) RateLimit(_ context.Context) (*domain.RateLimitInfo, error) {
	return m.rateLimit, m.err
}

// mockController implements driving.SyncController. Initialize shows
// content on the sink it was built with.
type mockController struct {
	mu       sync.Mutex
	sink     driven.DisplaySink
	content  string
	initErr  error
	inits    int
	disposed bool
	applied  int
}

func (m *mockController) Initialize(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inits++
	if m.initErr != nil {
		return m.initErr
	}
	m.sink.ShowDocument(m.content)
	return nil
}

func (m *mockController) ApplySettingsChange(_ context.Context, _ *time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applied++
	return nil
}

func (m *mockController) RunOnce(_ context.Context) domain.PollCycleResult {
	return domain.UnchangedResult()
}

func (m *mockController) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disposed = true
}

func (m *mockController) State() domain.SyncState { return domain.SyncState{} }

func (m *mockController) Latest() *domain.DocumentSnapshot { return nil }

func (m *mockController) Disposed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disposed
}

// mockWatcher implements ConfigWatcher.
type mockWatcher struct {
	mu       sync.Mutex
	applier  configwatch.Applier
	startErr error
	started  bool
	stopped  bool
	onChange func(*domain.AppSettings)
}

func (m *mockWatcher) Start(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = m.startErr == nil
	return m.startErr
}

func (m *mockWatcher) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return nil
}

func (m *mockWatcher) Acknowledge(_ context.Context) {}

func (m *mockWatcher) OnChange(fn func(*domain.AppSettings)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

type testEnv struct {
	store    *memory.ConfigStore
	settings driving.SettingsService
	docs     *mockDocumentService
	history  *memory.HistoryStore
	ctl      *mockController
	watcher  *mockWatcher
	closed   int
}

// setupServices installs in-memory services and resets flag state.
func setupServices(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store:   memory.NewConfigStore(),
		docs:    &mockDocumentService{},
		history: memory.NewHistoryStore(),
		ctl:     &mockController{content: "# hello"},
		watcher: &mockWatcher{},
	}
	env.settings = services.NewSettingsService(env.store)

	SetServices(&Services{
		Settings:  env.settings,
		Documents: env.docs,
		History:   services.NewHistoryService(env.history),
		NewController: func(_ context.Context, sink driven.DisplaySink) (driving.SyncController, error) {
			env.ctl.sink = sink
			return env.ctl, nil
		},
		NewWatcher: func(applier configwatch.Applier) ConfigWatcher {
			env.watcher.applier = applier
			return env.watcher
		},
		Close: func() error {
			env.closed++
			return nil
		},
	})

	options = Options{}
	fetchVersion = false
	updateFile = ""
	historyLimit = 20
	watchPlain = false
	serveAddr = "127.0.0.1:0"

	t.Cleanup(func() { SetServices(nil) })
	return env
}

// execute runs the root command with args and returns its output.
func execute(ctx context.Context, stdin io.Reader, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	if stdin != nil {
		rootCmd.SetIn(stdin)
	}
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

// run executes the root command with a background context.
func run(args ...string) (string, error) {
	return execute(context.Background(), nil, args...)
}
