// Package httpapi serves the docwatch JSON API used by `docwatch serve`.
// A second docwatch process can watch the document through it with
// `--api host:port`.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/custodia-labs/docwatch/internal/core/ports/driving"
	"github.com/custodia-labs/docwatch/internal/logger"
)

// DefaultAddr is the listen address when none is given.
const DefaultAddr = "127.0.0.1:8765"

// Server serves the settings and document endpoints.
type Server struct {
	mu       sync.Mutex
	addr     string
	settings driving.SettingsService
	docs     driving.DocumentService

	server   *http.Server
	listener net.Listener
	errChan  chan error
}

// NewServer creates a server bound to addr once started.
func NewServer(addr string, settings driving.SettingsService, docs driving.DocumentService) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Server{
		addr:     addr,
		settings: settings,
		docs:     docs,
		errChan:  make(chan error, 1),
	}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/github/set", s.handleSetCredentials)
	mux.HandleFunc("GET /api/interval", s.handleGetInterval)
	mux.HandleFunc("POST /api/interval", s.handleSetInterval)
	mux.HandleFunc("GET /api/github/readme", s.handleReadme)
	mux.HandleFunc("POST /api/github/update", s.handleUpdate)
	mux.HandleFunc("GET /api/github/rate_limit", s.handleRateLimit)
	return logRequests(mux)
}

// Start listens and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return errors.New("server already started")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener
	s.addr = listener.Addr().String()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// updates wait for the consistency poll
		WriteTimeout: 30 * time.Second,
	}
	s.server = srv

	// Stop may clear s.server before this goroutine runs; Serve on a shut
	// down server returns ErrServerClosed and closes the listener.
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errChan <- err:
			default:
			}
		}
	}()

	logger.Info("api server listening", "addr", s.addr)
	return nil
}

// Err delivers a serve failure after Start.
func (s *Server) Err() <-chan error {
	return s.errChan
}

// Stop shuts down the server.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	s.server = nil
	return err
}

// Addr returns the listen address; after Start it carries the bound port.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("api request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
