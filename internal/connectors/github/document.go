package github

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/docwatch/internal/core/domain"
	"github.com/custodia-labs/docwatch/internal/core/ports/driven"
	"github.com/custodia-labs/docwatch/internal/logger"
)

// Consistency wait after a write.
const (
	ConsistencyTimeout = 5 * time.Second
	ConsistencyStep    = 500 * time.Millisecond
)

// Ensure DocumentStore implements the interfaces.
var (
	_ driven.DocumentSource  = (*DocumentStore)(nil)
	_ driven.DocumentWriter  = (*DocumentStore)(nil)
	_ driven.RateLimitReader = (*DocumentStore)(nil)
)

// DocumentStore serves the configured repository file.
// Settings are read on every call so credential and repository edits apply
// to the next request.
type DocumentStore struct {
	settings driven.SettingsSource
	cache    driven.ContentCache
	opts     []Option
	limiter  *RateLimiter

	consistencyTimeout time.Duration
	consistencyStep    time.Duration

	mu          sync.Mutex
	client      *Client
	clientToken string
}

// NewDocumentStore creates a store. cache may be nil, which disables
// conditional raw reads.
func NewDocumentStore(settings driven.SettingsSource, cache driven.ContentCache, opts ...Option) *DocumentStore {
	return &DocumentStore{
		settings:           settings,
		cache:              cache,
		opts:               opts,
		limiter:            NewRateLimiter(),
		consistencyTimeout: ConsistencyTimeout,
		consistencyStep:    ConsistencyStep,
	}
}

// SetConsistencyWait overrides the post-write wait. A zero timeout disables it.
func (s *DocumentStore) SetConsistencyWait(timeout, step time.Duration) {
	s.consistencyTimeout = timeout
	s.consistencyStep = step
}

// FetchDocument returns the current file state. Every failure is a *domain.FetchError.
func (s *DocumentStore) FetchDocument(ctx context.Context) (*domain.DocumentSnapshot, error) {
	client, target, err := s.prepare(ctx)
	if err != nil {
		return nil, err
	}

	if snap := s.fetchRaw(ctx, client, target); snap != nil {
		return snap, nil
	}

	file, err := client.GetFile(ctx, target)
	if err != nil {
		return nil, toFetchError(err)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, domain.NewFetchError(0, "decode content: "+err.Error(), err)
	}
	version, err := domain.ParseVersionMarker(file.GetSHA())
	if err != nil {
		return nil, domain.NewFetchError(0, "response carried no version", err)
	}
	return &domain.DocumentSnapshot{Version: version, Content: content}, nil
}

// fetchRaw tries the raw endpoint and returns nil when the caller should
// fall back to the contents API.
func (s *DocumentStore) fetchRaw(ctx context.Context, client *Client, target domain.Target) *domain.DocumentSnapshot {
	key := target.CacheKey()

	var cached *domain.CachedContent
	if s.cache != nil {
		if c, err := s.cache.Get(ctx, key); err == nil {
			cached = c
		}
	}

	etag := ""
	if cached != nil {
		etag = cached.ETag
	}

	raw, err := client.GetRawFile(ctx, target, etag)
	if err != nil {
		logger.Debug("raw read failed, using contents api", "target", target.String(), "error", err)
		return nil
	}

	if raw.NotModified {
		if cached == nil {
			return nil
		}
		return &domain.DocumentSnapshot{Version: domain.BlobMarker(cached.Content), Content: cached.Content}
	}

	if s.cache != nil && raw.ETag != "" {
		if err := s.cache.Put(ctx, key, domain.CachedContent{ETag: raw.ETag, Content: raw.Content}); err != nil {
			logger.Warn("cache raw read", "error", err)
		}
	}
	return &domain.DocumentSnapshot{Version: domain.BlobMarker(raw.Content), Content: raw.Content}
}

// WriteDocument commits content and waits until the contents API reports
// the new SHA, or the consistency timeout passes.
func (s *DocumentStore) WriteDocument(ctx context.Context, content, message string) (*domain.DocumentSnapshot, error) {
	client, target, err := s.prepare(ctx)
	if err != nil {
		return nil, err
	}

	current, err := client.GetFile(ctx, target)
	if err != nil {
		return nil, toFetchError(err)
	}
	oldSHA := current.GetSHA()

	result, err := client.UpdateFile(ctx, target, content, message, oldSHA)
	if err != nil {
		return nil, toFetchError(err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, target.CacheKey()); err != nil {
			logger.Warn("invalidate cache", "error", err)
		}
	}

	newSHA := result.GetContent().GetSHA()
	if newSHA == "" {
		newSHA = domain.BlobMarker(content).String()
	}
	version, err := domain.ParseVersionMarker(newSHA)
	if err != nil {
		return nil, domain.NewFetchError(0, "", err)
	}

	if newSHA != oldSHA {
		s.waitForConsistency(ctx, client, target, oldSHA)
	}
	return &domain.DocumentSnapshot{Version: version, Content: content}, nil
}

func (s *DocumentStore) waitForConsistency(ctx context.Context, client *Client, target domain.Target, oldSHA string) {
	if s.consistencyTimeout <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.consistencyTimeout)
	defer cancel()

	for {
		if file, err := client.GetFile(ctx, target); err == nil && file.GetSHA() != oldSHA {
			return
		}
		select {
		case <-ctx.Done():
			logger.Debug("consistency wait timed out", "target", target.String())
			return
		case <-time.After(s.consistencyStep):
		}
	}
}

// RateLimit reports the core API quota. It works without credentials.
func (s *DocumentStore) RateLimit(ctx context.Context) (*domain.RateLimitInfo, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, domain.NewFetchError(0, "", err)
	}
	client, err := s.clientFor(ctx, settings.Credentials.Token)
	if err != nil {
		return nil, domain.NewFetchError(0, "", err)
	}

	limits, err := client.RateLimit(ctx)
	if err != nil {
		return nil, toFetchError(err)
	}
	core := limits.GetCore()
	if core == nil {
		return nil, domain.NewFetchError(0, "response carried no core rate", nil)
	}
	return &domain.RateLimitInfo{
		Remaining: core.Remaining,
		Limit:     core.Limit,
		ResetAt:   core.Reset.Time,
	}, nil
}

// prepare resolves settings and the client for a request that needs credentials.
func (s *DocumentStore) prepare(ctx context.Context) (*Client, domain.Target, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, domain.Target{}, domain.NewFetchError(0, "", err)
	}
	if !settings.Credentials.IsComplete() {
		return nil, domain.Target{}, domain.NewFetchError(400, domain.ErrAuthRequired.Error(), domain.ErrAuthRequired)
	}

	client, err := s.clientFor(ctx, settings.Credentials.Token)
	if err != nil {
		return nil, domain.Target{}, domain.NewFetchError(0, "", err)
	}
	return client, settings.Target(), nil
}

// clientFor returns a client for token, rebuilding it when the token changed.
func (s *DocumentStore) clientFor(ctx context.Context, token string) (*Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil && s.clientToken == token {
		return s.client, nil
	}

	opts := append([]Option{WithRateLimiter(s.limiter)}, s.opts...)
	// the client outlives this request
	client, err := NewClientWithToken(context.WithoutCancel(ctx), token, opts...)
	if err != nil {
		return nil, err
	}
	if s.client != nil {
		logger.Debug("github client rebuilt for new token")
	}
	s.client = client
	s.clientToken = token
	return client, nil
}

// IsAuthError reports whether err is the missing-credentials failure.
func IsAuthError(err error) bool {
	return errors.Is(err, domain.ErrAuthRequired)
}
