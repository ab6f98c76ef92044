// Package configwatch reloads the config file when it is edited outside the
// running process and asks the controller to re-sync.
package configwatch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docwatch/internal/core/domain"
	"github.com/custodia-labs/docwatch/internal/core/ports/driven"
	"github.com/custodia-labs/docwatch/internal/logger"
)

// DefaultDebounce collapses the burst of events one save produces.
const DefaultDebounce = 150 * time.Millisecond

// Applier receives settings changes. services.Controller satisfies it.
type Applier interface {
	ApplySettingsChange(ctx context.Context, interval *time.Duration) error
}

// Watcher watches one config file.
type Watcher struct {
	store    driven.ConfigStore
	settings driven.SettingsSource
	applier  Applier
	debounce time.Duration

	mu       sync.Mutex
	last     domain.AppSettings
	onChange func(*domain.AppSettings)
	fs       *fsnotify.Watcher
	cancel   context.CancelFunc
	done     chan struct{}
}

// New creates a watcher for store's file. Settings are read through settings
// after every reload.
func New(store driven.ConfigStore, settings driven.SettingsSource, applier Applier) *Watcher {
	return &Watcher{
		store:    store,
		settings: settings,
		applier:  applier,
		debounce: DefaultDebounce,
	}
}

// SetDebounce overrides the quiet period before a reload.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

// OnChange registers a callback invoked after an external change was applied.
func (w *Watcher) OnChange(fn func(*domain.AppSettings)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start records the current settings as the baseline and begins watching.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fs != nil {
		return errors.New("config watcher already started")
	}

	current, err := w.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	w.last = *current

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// the store replaces the file by rename, so watch the directory
	if err := fsw.Add(filepath.Dir(w.store.Path())); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.store.Path()), err)
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w.fs = fsw
	w.cancel = cancel
	w.done = make(chan struct{})

	go w.loop(ctx, fsw, w.done, w.debounce)
	logger.Debug("config watcher started", "path", w.store.Path())
	return nil
}

// Stop ends watching. No change is applied after Stop returns.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	fsw, cancel, done := w.fs, w.cancel, w.done
	w.fs = nil
	w.mu.Unlock()

	if fsw == nil {
		return nil
	}
	cancel()
	err := fsw.Close()
	<-done
	return err
}

// Acknowledge records the current settings as already applied. In-process
// editors call it after saving so the resulting file event is not applied
// a second time.
func (w *Watcher) Acknowledge(ctx context.Context) {
	current, err := w.settings.Get(ctx)
	if err != nil {
		return
	}
	w.mu.Lock()
	w.last = *current
	w.mu.Unlock()
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}, debounce time.Duration) {
	defer close(done)

	target := filepath.Clean(w.store.Path())
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("config watcher error", "error", err)

		case <-timer.C:
			w.reload(ctx)
		}
	}
}

// reload re-reads the file and applies what changed.
func (w *Watcher) reload(ctx context.Context) {
	if err := w.store.Load(); err != nil {
		// a half-written or invalid file; the next event retries
		logger.Warn("reload config", "path", w.store.Path(), "error", err)
		return
	}
	next, err := w.settings.Get(ctx)
	if err != nil {
		logger.Warn("read settings", "error", err)
		return
	}

	w.mu.Lock()
	prev := w.last
	w.last = *next
	onChange := w.onChange
	w.mu.Unlock()

	if prev == *next {
		logger.Debug("config file event without settings change")
		return
	}

	var interval *time.Duration
	if next.PollInterval != prev.PollInterval {
		d := next.PollInterval
		interval = &d
	}
	logger.Info("settings changed on disk",
		"target", next.Target().String(),
		"interval", next.PollInterval,
	)

	if err := w.applier.ApplySettingsChange(ctx, interval); err != nil {
		logger.Debug("apply settings change", "error", err)
	}
	if onChange != nil {
		onChange(next)
	}
}
