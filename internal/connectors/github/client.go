package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/docwatch/internal/core/domain"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRawBaseURL serves raw file contents outside the API quota.
	DefaultRawBaseURL = "https://raw.githubusercontent.com/"
)

// Option customises a Client.
type Option func(*clientOptions)

type clientOptions struct {
	apiBaseURL  string
	rawBaseURL  string
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// WithAPIBaseURL points the client at a different API root, e.g. a test server.
func WithAPIBaseURL(u string) Option {
	return func(o *clientOptions) { o.apiBaseURL = u }
}

// WithRawBaseURL overrides the raw content host.
func WithRawBaseURL(u string) Option {
	return func(o *clientOptions) { o.rawBaseURL = u }
}

// WithHTTPClient sets the base HTTP client the token transport wraps.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithRateLimiter shares a limiter between clients.
func WithRateLimiter(r *RateLimiter) Option {
	return func(o *clientOptions) { o.rateLimiter = r }
}

// Client wraps the go-github client with helper methods.
type Client struct {
	gh          *gh.Client
	http        *http.Client
	rawBaseURL  string
	rateLimiter *RateLimiter
}

// NewClientWithToken creates a GitHub client with a static access token.
// An empty token yields an unauthenticated client.
func NewClientWithToken(ctx context.Context, token string, opts ...Option) (*Client, error) {
	o := clientOptions{rawBaseURL: DefaultRawBaseURL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rateLimiter == nil {
		o.rateLimiter = NewRateLimiter()
	}

	base := o.httpClient
	if base == nil {
		base = &http.Client{Timeout: DefaultTimeout}
	}

	tc := base
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		tc = oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, base), ts)
		tc.Timeout = base.Timeout
	}

	client := gh.NewClient(tc)
	if o.apiBaseURL != "" {
		u, err := url.Parse(withTrailingSlash(o.apiBaseURL))
		if err != nil {
			return nil, fmt.Errorf("parse api base url: %w", err)
		}
		client.BaseURL = u
	}

	return &Client{
		gh:          client,
		http:        tc,
		rawBaseURL:  withTrailingSlash(o.rawBaseURL),
		rateLimiter: o.rateLimiter,
	}, nil
}

// RawFile is the result of a raw endpoint read.
type RawFile struct {
	Content     string
	ETag        string
	NotModified bool
}

// GetRawFile reads the file from the raw endpoint. A non-empty etag is sent
// as If-None-Match; a 304 reply sets NotModified and leaves Content empty.
func (c *Client) GetRawFile(ctx context.Context, target domain.Target, etag string) (*RawFile, error) {
	rawURL := c.rawBaseURL + strings.Join([]string{
		url.PathEscape(target.Owner),
		url.PathEscape(target.Repo),
		url.PathEscape(target.Branch),
		escapePath(target.Path),
	}, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build raw request: %w", err)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get raw file: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		return &RawFile{ETag: etag, NotModified: true}, nil
	case http.StatusOK:
	default:
		return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode), URL: rawURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read raw file: %w", err)
	}
	return &RawFile{Content: string(body), ETag: resp.Header.Get("ETag")}, nil
}

// GetFile fetches file metadata and content from the contents API.
func (c *Client) GetFile(ctx context.Context, target domain.Target) (*gh.RepositoryContent, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	opts := &gh.RepositoryContentGetOptions{Ref: target.Branch}
	file, _, resp, err := c.gh.Repositories.GetContents(ctx, target.Owner, target.Repo, target.Path, opts)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, c.wrapError(err, "get contents")
	}
	if file == nil {
		return nil, ErrNotAFile
	}
	return file, nil
}

// UpdateFile commits content on the target branch. sha must be the blob SHA
// the commit replaces.
func (c *Client) UpdateFile(
	ctx context.Context, target domain.Target, content, message, sha string,
) (*gh.RepositoryContentResponse, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	opts := &gh.RepositoryContentFileOptions{
		Message: gh.Ptr(message),
		Content: []byte(content),
		SHA:     gh.Ptr(sha),
		Branch:  gh.Ptr(target.Branch),
	}
	result, resp, err := c.gh.Repositories.UpdateFile(ctx, target.Owner, target.Repo, target.Path, opts)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, c.wrapError(err, "update file")
	}
	return result, nil
}

// RateLimit returns the current rate limit status.
func (c *Client) RateLimit(ctx context.Context) (*gh.RateLimits, error) {
	limits, _, err := c.gh.RateLimit.Get(ctx)
	if err != nil {
		return nil, c.wrapError(err, "get rate limit")
	}
	return limits, nil
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (c *Client) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(resp.Response)
}

// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
		}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return apiErr
	}

	return fmt.Errorf("%s: %w", operation, err)
}

func withTrailingSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}

func escapePath(p string) string {
	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
