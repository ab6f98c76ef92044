package configwatch

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docwatch/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docwatch/internal/core/domain"
	"github.com/custodia-labs/docwatch/internal/core/services"
)

type applyCall struct {
	interval *time.Duration
}

type recordingApplier struct {
	mu    sync.Mutex
	calls []applyCall
}

func (a *recordingApplier) ApplySettingsChange(_ context.Context, interval *time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, applyCall{interval: interval})
	return nil
}

func (a *recordingApplier) snapshot() []applyCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]applyCall(nil), a.calls...)
}

type fixture struct {
	dir      string
	store    *file.ConfigStore
	settings *services.SettingsService
	applier  *recordingApplier
	watcher  *Watcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := file.NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(services.KeyUsername, "octo"))
	require.NoError(t, store.Save())

	f := &fixture{
		dir:      dir,
		store:    store,
		settings: services.NewSettingsService(store),
		applier:  &recordingApplier{},
	}
	f.watcher = New(store, f.settings, f.applier)
	f.watcher.SetDebounce(20 * time.Millisecond)
	require.NoError(t, f.watcher.Start(context.Background()))
	t.Cleanup(func() { _ = f.watcher.Stop() })
	return f
}

// editExternally writes the file through a second store, as another
// docwatch process would.
func (f *fixture) editExternally(t *testing.T, key string, value any) {
	t.Helper()
	other, err := file.NewConfigStore(f.dir)
	require.NoError(t, err)
	require.NoError(t, other.Set(key, value))
	require.NoError(t, other.Save())
}

func TestWatcher_IntervalChange(t *testing.T) {
	f := newFixture(t)

	f.editExternally(t, services.KeyIntervalMS, 1000)

	require.Eventually(t, func() bool { return len(f.applier.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
	call := f.applier.snapshot()[0]
	require.NotNil(t, call.interval)
	assert.Equal(t, time.Second, *call.interval)

	settings, err := f.settings.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Second, settings.PollInterval, "store reloaded from disk")
}

func TestWatcher_RepoChangeKeepsInterval(t *testing.T) {
	f := newFixture(t)

	f.editExternally(t, services.KeyRepo, "docs")

	require.Eventually(t, func() bool { return len(f.applier.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Nil(t, f.applier.snapshot()[0].interval, "interval did not change, timer is kept")
}

func TestWatcher_OnChange(t *testing.T) {
	f := newFixture(t)
	got := make(chan *domain.AppSettings, 1)
	f.watcher.OnChange(func(s *domain.AppSettings) { got <- s })

	f.editExternally(t, services.KeyRepo, "docs")

	select {
	case s := <-got:
		assert.Equal(t, "docs", s.Repo)
	case <-time.After(2 * time.Second):
		t.Fatal("OnChange not called")
	}
}

func TestWatcher_IgnoresUnchangedRewrite(t *testing.T) {
	f := newFixture(t)

	f.editExternally(t, services.KeyUsername, "octo")
	time.Sleep(200 * time.Millisecond)

	assert.Empty(t, f.applier.snapshot())
}

func TestWatcher_AcknowledgeSuppressesOwnSave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.settings.SetPollInterval(ctx, 2*time.Second))
	f.watcher.Acknowledge(ctx)
	time.Sleep(200 * time.Millisecond)

	assert.Empty(t, f.applier.snapshot())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, os.WriteFile(f.dir+"/notes.txt", []byte("x"), 0o600))
	time.Sleep(200 * time.Millisecond)

	assert.Empty(t, f.applier.snapshot())
}

func TestWatcher_InvalidFileIsSkipped(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, os.WriteFile(f.store.Path(), []byte("[github\nbroken"), 0o600))
	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, f.applier.snapshot())

	fixed := "[github]\nusername = \"octo\"\nrepo = \"fixed\"\n"
	require.NoError(t, os.WriteFile(f.store.Path(), []byte(fixed), 0o600))
	require.Eventually(t, func() bool { return len(f.applier.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.watcher.Stop())
	require.NoError(t, f.watcher.Stop())

	f.editExternally(t, services.KeyRepo, "late")
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, f.applier.snapshot())
}

func TestWatcher_DoubleStart(t *testing.T) {
	f := newFixture(t)
	assert.Error(t, f.watcher.Start(context.Background()))
}
