// Package display provides DisplaySink implementations that do not need a
// terminal UI. `watch --plain` combines a WriterSink and a LogSink through
// Multi; `mcp` reports through a LogSink alone.
package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/custodia-labs/docwatch/internal/core/ports/driven"
	"github.com/custodia-labs/docwatch/internal/logger"
)

// Ensure the sinks implement the interface.
var (
	_ driven.DisplaySink = (*WriterSink)(nil)
	_ driven.DisplaySink = (*LogSink)(nil)
	_ driven.DisplaySink = Multi(nil)
)

// WriterSink prints every document change to a writer.
type WriterSink struct {
	mu    sync.Mutex
	w     io.Writer
	name  string
	quiet bool
}

// NewWriterSink prints changes of the file called name to w.
func NewWriterSink(w io.Writer, name string) *WriterSink {
	return &WriterSink{w: w, name: name}
}

// SetQuiet drops error output. Errors are still logged.
func (s *WriterSink) SetQuiet(quiet bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quiet = quiet
}

// ShowDocument prints a change banner followed by the content.
func (s *WriterSink) ShowDocument(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintf(s.w, "[%s changed]\n", s.name)
	fmt.Fprint(s.w, content)
	if !strings.HasSuffix(content, "\n") {
		fmt.Fprintln(s.w)
	}
}

// ShowError prints a one-line error.
func (s *WriterSink) ShowError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quiet {
		return
	}
	fmt.Fprintf(s.w, "[error] %s\n", message)
}

// LogSink reports changes through the logger without the content.
type LogSink struct {
	name string
}

// NewLogSink creates a log sink for the file called name.
func NewLogSink(name string) *LogSink {
	return &LogSink{name: name}
}

// ShowDocument logs the change and the content size.
func (s *LogSink) ShowDocument(content string) {
	logger.Info("document changed", "file", s.name, "bytes", len(content))
}

// ShowError logs the failure.
func (s *LogSink) ShowError(message string) {
	logger.Warn("document fetch failed", "file", s.name, "error", message)
}

// Multi forwards every call to each sink in order.
type Multi []driven.DisplaySink

// ShowDocument forwards to every sink.
func (m Multi) ShowDocument(content string) {
	for _, sink := range m {
		sink.ShowDocument(content)
	}
}

// ShowError forwards to every sink.
func (m Multi) ShowError(message string) {
	for _, sink := range m {
		sink.ShowError(message)
	}
}
