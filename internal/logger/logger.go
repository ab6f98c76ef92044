// Package logger provides structured logging for docwatch.
// Records are fanned out to a text handler on stderr (or the TUI's log
// file) and to the systemd journal when its socket is reachable. Under a
// systemd service the text handler is dropped. The --verbose flag lowers
// the level to debug so every reconciliation cycle is visible.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

var (
	mu      sync.RWMutex
	level   = new(slog.LevelVar)
	output  io.Writer = os.Stderr
	current *slog.Logger

	// journal is nil when the journal socket could not be used.
	journal    slog.Handler
	journalErr error
)

func init() {
	level.Set(slog.LevelWarn)
	journal, journalErr = newJournalHandler()
	current = build(output)
}

// SetVerbose switches between debug and warn level.
func SetVerbose(v bool) {
	if v {
		level.Set(slog.LevelDebug)
		return
	}
	level.Set(slog.LevelWarn)
}

// IsVerbose returns true if debug logging is enabled.
func IsVerbose() bool {
	return level.Level() <= slog.LevelDebug
}

// SetLevel sets the minimum level directly.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// SetOutput sets the writer for the text handler.
// Defaults to os.Stderr; nil restores the default. The TUI redirects logs
// to a file while it owns the terminal.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	mu.Lock()
	defer mu.Unlock()
	output = w
	current = build(w)
}

// Logger returns the active logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

// Section marks the start of a named phase in debug output.
func Section(name string) {
	Logger().Debug("=== " + name + " ===")
}

func build(w io.Writer) *slog.Logger {
	return slog.New(slogmulti.Fanout(handlers(w, isSystemdService(), journal, journalErr)...))
}

// handlers picks the fanout targets. The text handler is kept outside
// service mode, and also inside it when the journal is unavailable so
// records are never dropped.
func handlers(w io.Writer, service bool, journal slog.Handler, journalErr error) []slog.Handler {
	var hs []slog.Handler

	var textHandler slog.Handler
	if !service || journal == nil {
		textHandler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
		hs = append(hs, textHandler)
	}

	if journal == nil {
		if service && journalErr != nil {
			_ = textHandler.Handle(context.Background(), warnRecord("new systemd journal handler", journalErr))
		}
		return hs
	}
	return append(hs, journal)
}

func newJournalHandler() (slog.Handler, error) {
	h, err := slogjournal.NewHandler(&slogjournal.Options{
		Level: level,
		ReplaceGroup: func(key string) string {
			return toJournalKey(key)
		},
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			a.Key = toJournalKey(a.Key)
			return a
		},
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

func warnRecord(msg string, err error) slog.Record {
	r := slog.NewRecord(time.Now(), slog.LevelWarn, msg, 0)
	r.AddAttrs(slog.Any("error", err))
	return r
}

func toJournalKey(str string) string {
	str = strings.ToUpper(str)
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, str)
}

func isSystemdService() bool {
	content, err := os.ReadFile("/proc/self/cgroup")
	if err != nil {
		return false
	}
	parts := strings.Split(strings.TrimSpace(string(content)), ":")
	if len(parts) < 3 {
		return false
	}
	return strings.HasSuffix(path.Dir(parts[2]), ".service")
}
