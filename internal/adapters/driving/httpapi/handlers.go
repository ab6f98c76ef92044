package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docwatch/internal/core/domain"
	"github.com/custodia-labs/docwatch/internal/logger"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

type okBody struct {
	OK bool `json:"ok"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.settings.Status(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

type setRequest struct {
	Username *string `json:"username"`
	Token    *string `json:"token"`
	Repo     *string `json:"repo"`
}

func (s *Server) handleSetCredentials(w http.ResponseWriter, r *http.Request) {
	var req setRequest
	if !decodeBody(w, r, &req) {
		return
	}
	update := domain.SettingsUpdate{Username: req.Username, Token: req.Token, Repo: req.Repo}
	if err := s.settings.Update(r.Context(), update); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody{OK: true})
}

type intervalBody struct {
	OK         bool  `json:"ok,omitempty"`
	IntervalMS int64 `json:"interval_ms"`
}

func (s *Server) handleGetInterval(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settings.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, intervalBody{IntervalMS: settings.PollInterval.Milliseconds()})
}

func (s *Server) handleSetInterval(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IntervalMS json.RawMessage `json:"interval_ms"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	ms, ok := parseMillis(req.IntervalMS)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid interval_ms"})
		return
	}
	if ms > domain.MaxPollIntervalMS {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "interval_ms out of range"})
		return
	}
	if time.Duration(ms)*time.Millisecond < domain.MinPollInterval {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "interval must be >= 100 ms"})
		return
	}
	if err := s.settings.SetPollInterval(r.Context(), time.Duration(ms)*time.Millisecond); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, intervalBody{OK: true, IntervalMS: ms})
}

// parseMillis accepts a JSON integer or a string holding one.
func parseMillis(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(str), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

type readmeBody struct {
	Version string `json:"version"`
	Content string `json:"content"`
}

func (s *Server) handleReadme(w http.ResponseWriter, r *http.Request) {
	snap, err := s.docs.Fetch(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, readmeBody{Version: snap.Version.String(), Content: snap.Content})
}

type updateRequest struct {
	Content string `json:"content"`
	Message string `json:"message"`
}

type updateBody struct {
	OK      bool   `json:"ok"`
	SHA     string `json:"sha"`
	Content string `json:"content"`
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	snap, err := s.docs.Update(r.Context(), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updateBody{OK: true, SHA: snap.Version.String(), Content: snap.Content})
}

type rateLimitBody struct {
	Remaining int    `json:"remaining"`
	Limit     int    `json:"limit"`
	ResetsAt  string `json:"resets_at"`
}

func (s *Server) handleRateLimit(w http.ResponseWriter, r *http.Request) {
	info, err := s.docs.RateLimit(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	body := rateLimitBody{Remaining: info.Remaining, Limit: info.Limit}
	if !info.ResetAt.IsZero() {
		body.ResetsAt = info.ResetAt.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, body)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return false
	}
	return true
}

// writeError maps service errors to a status and an {error} body.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	var fe *domain.FetchError
	switch {
	case errors.As(err, &fe):
		message = fe.Message
		status = fe.StatusCode
		if status < 400 {
			status = http.StatusBadGateway
		}
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotImplemented):
		status = http.StatusNotImplemented
	}

	if status >= 500 {
		logger.Warn("api request failed", "status", status, "error", err)
	}
	writeJSON(w, status, errorBody{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Debug("write response", "error", err)
	}
}
