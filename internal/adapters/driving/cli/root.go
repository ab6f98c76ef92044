// Package cli provides the docwatch command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docwatch/internal/adapters/driven/configwatch"
	"github.com/custodia-labs/docwatch/internal/core/domain"
	"github.com/custodia-labs/docwatch/internal/core/ports/driven"
	"github.com/custodia-labs/docwatch/internal/core/ports/driving"
	"github.com/custodia-labs/docwatch/internal/logger"
)

// version is set by main from build flags.
var version = "dev"

// Options carry the global flags to the bootstrap func.
type Options struct {
	Verbose   bool
	ConfigDir string
	DataDir   string
	APIAddr   string
	InitCreds string
}

// ControllerFactory builds a sync controller delivering to sink.
type ControllerFactory func(ctx context.Context, sink driven.DisplaySink) (driving.SyncController, error)

// ConfigWatcher applies out-of-band config file edits.
type ConfigWatcher interface {
	Start(ctx context.Context) error
	Stop() error
	Acknowledge(ctx context.Context)
	OnChange(fn func(*domain.AppSettings))
}

// WatcherFactory builds a config watcher for applier. It returns nil when
// there is no local config file to watch.
type WatcherFactory func(applier configwatch.Applier) ConfigWatcher

// Services are the wired dependencies the commands run against.
type Services struct {
	Settings      driving.SettingsService
	Documents     driving.DocumentService
	History       driving.HistoryService
	NewController ControllerFactory
	NewWatcher    WatcherFactory

	// LogFile receives logs while the TUI owns the terminal. Optional.
	LogFile string

	// Close releases stores. Optional.
	Close func() error
}

// Bootstrap builds Services from the global flags.
type Bootstrap func(ctx context.Context, opts Options) (*Services, error)

var (
	bootstrap Bootstrap
	options   Options

	settingsService driving.SettingsService
	documentService driving.DocumentService
	historyService  driving.HistoryService
	newController   ControllerFactory
	newWatcher      WatcherFactory
	logFile         string
	closeServices   func() error
)

// annotation that marks commands needing no services.
const skipBootstrap = "docwatch/skip-bootstrap"

var rootCmd = &cobra.Command{
	Use:   "docwatch",
	Short: "Watch a GitHub-hosted document and keep a live view of it",
	Long: `docwatch polls a single file in a GitHub repository, shows its content
as soon as it changes and lets you edit credentials, the repository and the
polling interval while it runs.

Run "docwatch watch" to start the live view.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return teardown()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&options.Verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&options.ConfigDir, "config-dir", "", "Configuration directory (default ~/.docwatch)")
	flags.StringVar(&options.DataDir, "data-dir", "", "Data directory for history and cache (default: config dir)")
	flags.StringVar(&options.APIAddr, "api", "", "Use a running `docwatch serve` at this address instead of GitHub")
	flags.StringVar(&options.InitCreds, "init-creds", "", "Seed TOKEN, USERNAME and REPO_NAME from a KEY=VALUE file")
}

// SetVersion sets the version reported by `docwatch version`.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetBootstrap sets the func that wires services before a command runs.
func SetBootstrap(fn Bootstrap) {
	bootstrap = fn
}

// SetServices installs services directly, bypassing bootstrap.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	settingsService = s.Settings
	documentService = s.Documents
	historyService = s.History
	newController = s.NewController
	newWatcher = s.NewWatcher
	logFile = s.LogFile
	closeServices = s.Close
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	// PersistentPostRunE is skipped when a command fails.
	if cerr := teardown(); err == nil {
		err = cerr
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	if options.Verbose {
		logger.SetVerbose(true)
	}

	if cmd.Annotations[skipBootstrap] == "true" || bootstrap == nil {
		return nil
	}

	services, err := bootstrap(cmd.Context(), options)
	if err != nil {
		return err
	}
	SetServices(services)
	return nil
}

func teardown() error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	if err != nil {
		return fmt.Errorf("closing stores: %w", err)
	}
	return nil
}

func requireSettings() error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return nil
}

func requireDocuments() error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	return nil
}
