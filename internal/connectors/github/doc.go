// Package github reads and writes a single repository file through the
// GitHub API and reports API quota.
//
// # Architecture
//
//   - Client: wraps go-github with rate limiting and a raw.githubusercontent.com reader
//   - DocumentStore: implements driven.DocumentSource, driven.DocumentWriter and
//     driven.RateLimitReader on top of Client
//   - RateLimiter: proactive token bucket plus header tracking
//
// # Reads
//
// A fetch first tries the raw endpoint with If-None-Match against the cached
// ETag. A 304 serves the cached body. Any other failure falls back to the
// contents API. The version marker is always the git blob SHA of the content,
// so both paths produce the same marker for the same bytes.
//
// # Authentication
//
// Personal access tokens are sent through an oauth2 static token source.
// The client is rebuilt whenever the configured token changes.
package github
