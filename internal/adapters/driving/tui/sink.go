package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docwatch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docwatch/internal/core/ports/driven"
)

// Sender delivers messages into a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Sink is the display sink used while the TUI runs. It turns sink calls
// into program messages. Messages produced before Attach are queued.
type Sink struct {
	mu      sync.Mutex
	sender  Sender
	pending []tea.Msg
}

var (
	_ driven.DisplaySink = (*Sink)(nil)
	_ Sender             = (*Sink)(nil)
)

// NewSink creates a detached sink.
func NewSink() *Sink {
	return &Sink{}
}

// Attach connects the sink to a program and flushes queued messages.
// Sends made during the flush wait for it, so order is kept. Attach blocks
// until the program reads the queue; call it from its own goroutine when
// the program has not started yet.
func (s *Sink) Attach(sender Sender) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, msg := range s.pending {
		sender.Send(msg)
	}
	s.pending = nil
	s.sender = sender
}

// Detach stops forwarding. Later calls are queued again.
func (s *Sink) Detach() {
	s.mu.Lock()
	s.sender = nil
	s.mu.Unlock()
}

// ShowDocument implements driven.DisplaySink.
func (s *Sink) ShowDocument(content string) {
	s.Send(messages.DocumentShown{Content: content})
}

// ShowError implements driven.DisplaySink.
func (s *Sink) ShowError(message string) {
	s.Send(messages.FetchFailed{Message: message})
}

// Send forwards msg to the attached program, or queues it.
func (s *Sink) Send(msg tea.Msg) {
	s.mu.Lock()
	sender := s.sender
	if sender == nil {
		s.pending = append(s.pending, msg)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	sender.Send(msg)
}

// Pending returns the number of queued messages.
func (s *Sink) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
