// Package remote talks to a running `docwatch serve` instance over its JSON
// API. It lets a second process watch the document without holding GitHub
// credentials of its own.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/docwatch/internal/core/domain"
	"github.com/custodia-labs/docwatch/internal/core/ports/driven"
)

const (
	// DefaultAddr is where `docwatch serve` listens by default.
	DefaultAddr = "127.0.0.1:8765"

	defaultUserAgent = "docwatch/remote"
	requestTimeout   = 10 * time.Second
	// writes wait out the server's consistency poll
	writeTimeout = 30 * time.Second
)

// Ensure Client implements the driven ports.
var (
	_ driven.DocumentSource  = (*Client)(nil)
	_ driven.DocumentWriter  = (*Client)(nil)
	_ driven.RateLimitReader = (*Client)(nil)
)

// Client talks to the docwatch HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// NewClient builds a Client for a host:port or URL. An empty addr uses DefaultAddr.
func NewClient(addr string) (*Client, error) {
	base, err := parseBaseURL(addr)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the server root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

type readmeResponse struct {
	Version string `json:"version"`
	Content string `json:"content"`
}

// FetchDocument performs one round trip against /api/github/readme.
// Every failure is a *domain.FetchError.
func (c *Client) FetchDocument(ctx context.Context) (*domain.DocumentSnapshot, error) {
	var payload readmeResponse
	if err := c.do(ctx, http.MethodGet, "/api/github/readme", nil, &payload, requestTimeout); err != nil {
		return nil, err
	}
	snap, err := domain.NewDocumentSnapshot(payload.Version, payload.Content)
	if err != nil {
		return nil, domain.NewFetchError(0, "response carried no version", err)
	}
	return snap, nil
}

type updateRequest struct {
	Content string `json:"content"`
	Message string `json:"message,omitempty"`
}

type updateResponse struct {
	OK      bool   `json:"ok"`
	SHA     string `json:"sha"`
	Content string `json:"content"`
}

// WriteDocument posts new content to /api/github/update.
func (c *Client) WriteDocument(ctx context.Context, content, message string) (*domain.DocumentSnapshot, error) {
	var payload updateResponse
	body := updateRequest{Content: content, Message: message}
	if err := c.do(ctx, http.MethodPost, "/api/github/update", body, &payload, writeTimeout); err != nil {
		return nil, err
	}
	if !payload.OK {
		return nil, domain.NewFetchError(0, "server did not confirm the update", nil)
	}

	version := domain.VersionMarker(payload.SHA)
	if payload.SHA == "" {
		version = domain.BlobMarker(content)
	}
	written := content
	if payload.Content != "" {
		written = payload.Content
	}
	return &domain.DocumentSnapshot{Version: version, Content: written}, nil
}

type rateLimitResponse struct {
	Remaining int    `json:"remaining"`
	Limit     int    `json:"limit"`
	ResetsAt  string `json:"resets_at"`
}

// RateLimit reads the server's view of the GitHub quota.
func (c *Client) RateLimit(ctx context.Context) (*domain.RateLimitInfo, error) {
	var payload rateLimitResponse
	if err := c.do(ctx, http.MethodGet, "/api/github/rate_limit", nil, &payload, requestTimeout); err != nil {
		return nil, err
	}
	info := &domain.RateLimitInfo{Remaining: payload.Remaining, Limit: payload.Limit}
	if payload.ResetsAt != "" {
		if t, err := time.Parse(time.RFC3339, payload.ResetsAt); err == nil {
			info.ResetAt = t
		}
	}
	return info, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

// do sends one request. Non-2xx replies become a FetchError whose message is
// the body's error field, or the status text when the body has none.
func (c *Client) do(ctx context.Context, method, path string, body, dest any, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return domain.NewFetchError(0, "encode request", err)
		}
		reader = bytes.NewReader(encoded)
	}

	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return domain.NewFetchError(0, "create request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.NewFetchError(0, "", fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NewFetchError(resp.StatusCode, "", fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode >= 400 {
		var payload errorResponse
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			return domain.NewFetchError(resp.StatusCode, payload.Error, nil)
		}
		return domain.NewFetchError(resp.StatusCode, "", nil)
	}

	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return domain.NewFetchError(resp.StatusCode, "decode response: "+err.Error(), err)
	}
	return nil
}

func parseBaseURL(addr string) (*url.URL, error) {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		trimmed = DefaultAddr
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api address %q: %w", addr, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
