package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docwatch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docwatch/internal/core/domain"
)

// fakeGitHub serves the raw and contents endpoints for one file.
type fakeGitHub struct {
	mu      sync.Mutex
	content string
	sha     string

	rawStatus      int // non-zero forces this status on raw reads
	contentsStatus int
	contentsBody   string

	rawHits      int
	notModified  int
	contentsHits int
	updates      []map[string]string
	authHeaders  []string

	// lagReads makes the contents API keep reporting the old SHA for this
	// many reads after a write.
	lagReads int
	staleSHA string

	// lagAfterWrite is copied into lagReads by every accepted write.
	lagAfterWrite int
}

func newFakeGitHub(content string) *fakeGitHub {
	return &fakeGitHub{content: content, sha: domain.BlobMarker(content).String()}
}

func (f *fakeGitHub) etag() string {
	return `"` + f.sha[:12] + `"`
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.authHeaders = append(f.authHeaders, r.Header.Get("Authorization"))

	switch {
	case strings.HasPrefix(r.URL.Path, "/raw/"):
		f.serveRaw(w, r)
	case r.URL.Path == "/api/rate_limit":
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"resources":{"core":{"limit":5000,"remaining":4321,"reset":1767225600}}}`)
	case strings.HasPrefix(r.URL.Path, "/api/repos/octo/testrepo/contents/README.md"):
		f.serveContents(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	}
}

func (f *fakeGitHub) serveRaw(w http.ResponseWriter, r *http.Request) {
	f.rawHits++
	if r.URL.Path != "/raw/octo/testrepo/main/README.md" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if f.rawStatus != 0 {
		w.WriteHeader(f.rawStatus)
		return
	}
	if r.Header.Get("If-None-Match") == f.etag() {
		f.notModified++
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", f.etag())
	fmt.Fprint(w, f.content)
}

func (f *fakeGitHub) serveContents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodGet:
		f.contentsHits++
		if f.contentsStatus != 0 {
			w.WriteHeader(f.contentsStatus)
			fmt.Fprint(w, f.contentsBody)
			return
		}
		sha := f.sha
		if f.lagReads > 0 {
			f.lagReads--
			sha = f.staleSHA
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":     "file",
			"encoding": "base64",
			"name":     "README.md",
			"path":     "README.md",
			"sha":      sha,
			"content":  base64.StdEncoding.EncodeToString([]byte(f.content)),
		})

	case http.MethodPut:
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.updates = append(f.updates, body)
		if body["sha"] != f.sha {
			w.WriteHeader(http.StatusConflict)
			fmt.Fprintf(w, `{"message":"README.md does not match %s"}`, body["sha"])
			return
		}
		decoded, _ := base64.StdEncoding.DecodeString(body["content"])
		f.staleSHA = f.sha
		f.lagReads = f.lagAfterWrite
		f.content = string(decoded)
		f.sha = domain.BlobMarker(f.content).String()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": map[string]any{"sha": f.sha, "path": "README.md"},
			"commit":  map[string]any{"sha": "c0ffee", "message": body["message"]},
		})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeGitHub) set(content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content = content
	f.sha = domain.BlobMarker(content).String()
}

func (f *fakeGitHub) counts() (raw, notModified, contents int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rawHits, f.notModified, f.contentsHits
}

// staticSettings is a driven.SettingsSource with fixed values.
type staticSettings struct {
	mu       sync.Mutex
	settings domain.AppSettings
}

func (s *staticSettings) Get(context.Context) (*domain.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := s.settings
	return &copied, nil
}

func (s *staticSettings) setToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Credentials.Token = token
}

func configuredSettings() *staticSettings {
	settings := domain.DefaultAppSettings()
	settings.Credentials = domain.Credentials{Username: "octo", Token: "ghp_test"}
	return &staticSettings{settings: *settings}
}

func newTestStore(t *testing.T, fake *fakeGitHub, settings *staticSettings) (*DocumentStore, *memory.ContentCache) {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	cache := memory.NewContentCache()
	store := NewDocumentStore(settings, cache,
		WithAPIBaseURL(server.URL+"/api/"),
		WithRawBaseURL(server.URL+"/raw/"),
		WithRateLimiter(NewRateLimiterWithRate(rate.Inf, 1)),
	)
	store.SetConsistencyWait(0, 0)
	return store, cache
}
