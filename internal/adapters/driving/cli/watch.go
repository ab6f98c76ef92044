package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docwatch/internal/adapters/driven/display"
	"github.com/custodia-labs/docwatch/internal/adapters/driving/tui"
	"github.com/custodia-labs/docwatch/internal/core/domain"
	"github.com/custodia-labs/docwatch/internal/core/ports/driving"
	"github.com/custodia-labs/docwatch/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the document and show it as it changes",
	Long: `Polls the configured document and shows its content whenever it changes.

By default an interactive view is shown. Use --plain, or pipe the output, to
print "[README.md changed]" followed by the content on every change.

Controls:
  r        - Re-sync now
  i        - Edit polling interval
  o        - Edit repository
  s        - Settings (username, token, repository, interval)
  ↑/k, ↓/j - Scroll
  ?        - Toggle help
  q        - Quit

Edits to the config file from other processes are applied while running.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

// watchPlain is a flag for the watch command.
var watchPlain bool

func init() {
	watchCmd.Flags().BoolVar(&watchPlain, "plain", false, "Print changes to stdout instead of the interactive view")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	if newController == nil {
		return errors.New("sync controller not configured")
	}

	if watchPlain || !isTerminal(cmd) {
		return runPlainWatch(cmd)
	}
	return runTUIWatch(cmd)
}

func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func runPlainWatch(cmd *cobra.Command) error {
	ctx := cmd.Context()

	settings, err := settingsService.Get(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	name := filepath.Base(settings.Target().Path)
	sink := display.Multi{
		display.NewWriterSink(cmd.OutOrStdout(), name),
		display.NewLogSink(name),
	}
	ctl, err := newController(ctx, sink)
	if err != nil {
		return err
	}
	defer ctl.Dispose()

	stopWatcher, err := startWatcher(cmd, ctl, nil, nil)
	if err != nil {
		return err
	}
	defer stopWatcher()

	if err := ctl.Initialize(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}

func runTUIWatch(cmd *cobra.Command) (err error) {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("tui panic: %v", r)
		}
	}()

	ctx := cmd.Context()

	// The TUI owns the terminal; logs go to a file or nowhere.
	restore := redirectLogs()
	defer restore()

	sink := tui.NewSink()
	ctl, err := newController(ctx, sink)
	if err != nil {
		return err
	}

	ports := tui.NewPorts(ctl, settingsService)
	stopWatcher, err := startWatcher(cmd, ctl, ports, tui.Notify(sink))
	if err != nil {
		ctl.Dispose()
		return err
	}
	defer stopWatcher()

	app, err := tui.NewApp(ports)
	if err != nil {
		ctl.Dispose()
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx)

	// Run disposes the controller once the program exits.
	if err := app.Run(sink); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// startWatcher watches the config file when there is one. With ports set,
// in-process saves are acknowledged. notify may be nil.
func startWatcher(
	cmd *cobra.Command,
	ctl driving.SyncController,
	ports *tui.Ports,
	notify func(*domain.AppSettings),
) (func(), error) {
	if newWatcher == nil {
		return func() {}, nil
	}
	w := newWatcher(ctl)
	if w == nil {
		return func() {}, nil
	}

	if ports != nil {
		ports.Acknowledge = w.Acknowledge
	}
	w.OnChange(func(s *domain.AppSettings) {
		logger.Info("settings changed on disk", "target", s.Target().String())
		if notify != nil {
			notify(s)
		}
	})

	if err := w.Start(cmd.Context()); err != nil {
		return nil, fmt.Errorf("watching config: %w", err)
	}
	return func() {
		if err := w.Stop(); err != nil {
			logger.Warn("stopping config watcher", "error", err)
		}
	}, nil
}

func redirectLogs() func() {
	if logFile == "" {
		logger.SetOutput(io.Discard)
		return func() { logger.SetOutput(nil) }
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		logger.SetOutput(io.Discard)
		return func() { logger.SetOutput(nil) }
	}
	logger.SetOutput(f)
	return func() {
		logger.SetOutput(nil)
		f.Close() //nolint:errcheck
	}
}
