// Package app wires adapters and services into a runnable Runtime.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/docwatch/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docwatch/internal/adapters/driven/configwatch"
	"github.com/custodia-labs/docwatch/internal/adapters/driven/remote"
	"github.com/custodia-labs/docwatch/internal/adapters/driven/storage/bolt"
	"github.com/custodia-labs/docwatch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docwatch/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docwatch/internal/connectors/github"
	"github.com/custodia-labs/docwatch/internal/core/ports/driven"
	"github.com/custodia-labs/docwatch/internal/core/ports/driving"
	"github.com/custodia-labs/docwatch/internal/core/services"
	"github.com/custodia-labs/docwatch/internal/logger"
)

// Options select directories and the document backend.
type Options struct {
	// ConfigDir holds config.toml. Empty means ~/.docwatch.
	ConfigDir string

	// DataDir holds history.db and cache.db. Empty means ConfigDir.
	DataDir string

	// APIAddr switches to remote mode: documents and settings go through a
	// running `docwatch serve` instead of GitHub and the local config file.
	APIAddr string

	// InitCreds is a KEY=VALUE file seeded into the config on start.
	InitCreds string

	// GitHubOptions are passed to the GitHub connector. Used by tests.
	GitHubOptions []github.Option
}

// Runtime holds the wired services for one process.
type Runtime struct {
	Settings  driving.SettingsService
	Documents driving.DocumentService
	History   driving.HistoryService

	settingsSource driven.SettingsSource
	configStore    driven.ConfigStore
	source         driven.DocumentSource
	historyStore   driven.CycleHistoryStore

	dataDir string
	remote  bool
	closers []func() error
}

// DefaultConfigDir returns ~/.docwatch.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".docwatch"), nil
}

// New builds a Runtime. Stores that cannot be opened fall back to memory
// with a warning so a second process can still watch the document.
func New(_ context.Context, opts Options) (*Runtime, error) {
	configDir := opts.ConfigDir
	if configDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}
	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = configDir
	}

	rt := &Runtime{dataDir: dataDir}

	history, closeHistory := openHistory(dataDir)
	rt.historyStore = history
	if closeHistory != nil {
		rt.closers = append(rt.closers, closeHistory)
	}
	rt.History = services.NewHistoryService(history)

	if opts.APIAddr != "" {
		if err := rt.wireRemote(opts.APIAddr); err != nil {
			rt.Close() //nolint:errcheck
			return nil, err
		}
		return rt, nil
	}

	if err := rt.wireLocal(configDir, dataDir, opts); err != nil {
		rt.Close() //nolint:errcheck
		return nil, err
	}
	return rt, nil
}

func (r *Runtime) wireRemote(addr string) error {
	client, err := remote.NewClient(addr)
	if err != nil {
		return fmt.Errorf("remote api: %w", err)
	}
	settings := remote.NewSettingsService(client)

	r.remote = true
	r.Settings = settings
	r.settingsSource = settings
	r.source = client
	r.Documents = services.NewDocumentService(client, client, client)
	logger.Debug("remote mode", "api", client.BaseURL())
	return nil
}

func (r *Runtime) wireLocal(configDir, dataDir string, opts Options) error {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.InitCreds != "" {
		n, err := file.SeedCredentials(store, opts.InitCreds)
		if err != nil {
			return fmt.Errorf("seeding credentials: %w", err)
		}
		if n > 0 {
			logger.Info("seeded credentials", "file", opts.InitCreds, "keys", n)
		}
	}

	settings := services.NewSettingsService(store)
	docs := github.NewDocumentStore(settings, openCache(dataDir, &r.closers), opts.GitHubOptions...)

	r.configStore = store
	r.Settings = settings
	r.settingsSource = settings
	r.source = docs
	r.Documents = services.NewDocumentService(docs, docs, docs)
	return nil
}

func openHistory(dataDir string) (driven.CycleHistoryStore, func() error) {
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		logger.Warn("history store unavailable, keeping history in memory", "error", err)
		return memory.NewHistoryStore(), nil
	}
	return store.HistoryStore(), store.Close
}

func openCache(dataDir string, closers *[]func() error) driven.ContentCache {
	cache, err := bolt.Open(dataDir)
	if err != nil {
		logger.Warn("content cache unavailable, caching in memory", "error", err)
		return memory.NewContentCache()
	}
	*closers = append(*closers, cache.Close)
	return cache
}

// Remote reports whether the runtime talks to a `docwatch serve` instance.
func (r *Runtime) Remote() bool {
	return r.remote
}

// DataDir returns the directory holding history, cache and logs.
func (r *Runtime) DataDir() string {
	return r.dataDir
}

// ConfigPath returns the watched config file, or "" in remote mode.
func (r *Runtime) ConfigPath() string {
	if r.configStore == nil {
		return ""
	}
	return r.configStore.Path()
}

// NewController builds a controller for sink at the configured interval.
func (r *Runtime) NewController(ctx context.Context, sink driven.DisplaySink) (*services.Controller, error) {
	settings, err := r.settingsSource.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	return services.NewController(r.source, sink, r.historyStore, settings.PollInterval), nil
}

// NewWatcher watches the config file and applies edits to applier.
// It returns nil in remote mode, where there is no local file.
func (r *Runtime) NewWatcher(applier configwatch.Applier) *configwatch.Watcher {
	if r.configStore == nil {
		return nil
	}
	return configwatch.New(r.configStore, r.settingsSource, applier)
}

// Close releases the stores.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}
