package app

import (
	"context"
	"path/filepath"

	"github.com/custodia-labs/docwatch/internal/adapters/driven/configwatch"
	"github.com/custodia-labs/docwatch/internal/adapters/driving/cli"
	"github.com/custodia-labs/docwatch/internal/core/ports/driven"
	"github.com/custodia-labs/docwatch/internal/core/ports/driving"
)

// LogFileName is written under the data dir while the TUI owns the terminal.
const LogFileName = "docwatch.log"

// Bootstrap builds a Runtime from the CLI flags and exposes it as cli.Services.
func Bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	rt, err := New(ctx, Options{
		ConfigDir: opts.ConfigDir,
		DataDir:   opts.DataDir,
		APIAddr:   opts.APIAddr,
		InitCreds: opts.InitCreds,
	})
	if err != nil {
		return nil, err
	}
	return Services(rt), nil
}

// Services adapts rt to the command layer.
func Services(rt *Runtime) *cli.Services {
	return &cli.Services{
		Settings:  rt.Settings,
		Documents: rt.Documents,
		History:   rt.History,
		NewController: func(ctx context.Context, sink driven.DisplaySink) (driving.SyncController, error) {
			ctl, err := rt.NewController(ctx, sink)
			if err != nil {
				return nil, err
			}
			return ctl, nil
		},
		NewWatcher: func(applier configwatch.Applier) cli.ConfigWatcher {
			// A nil *Watcher in the interface would not compare equal to nil.
			w := rt.NewWatcher(applier)
			if w == nil {
				return nil
			}
			return w
		},
		LogFile: filepath.Join(rt.DataDir(), LogFileName),
		Close:   rt.Close,
	}
}
