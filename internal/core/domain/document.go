package domain

import (
	"crypto/sha1" //nolint:gosec // git object ids are SHA-1
	"encoding/hex"
	"fmt"
	"strings"
)

// VersionMarker is an opaque token identifying a specific remote document
// state. Only equality is meaningful; markers carry no ordering.
type VersionMarker string

// ParseVersionMarker validates a marker received at an API boundary.
// Empty and "null" markers are rejected so that a renamed or missing field
// cannot silently disable change detection.
func ParseVersionMarker(raw string) (VersionMarker, error) {
	v := strings.TrimSpace(raw)
	if v == "" || v == "null" {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, raw)
	}
	return VersionMarker(v), nil
}

// String returns the marker text.
func (v VersionMarker) String() string {
	return string(v)
}

// Short returns an abbreviated marker for display.
func (v VersionMarker) Short() string {
	if len(v) > 7 {
		return string(v[:7])
	}
	return string(v)
}

// BlobMarker returns the git blob SHA of content. GitHub reports the same
// value as the file sha, so locally computed and API supplied markers agree
// for identical content.
func BlobMarker(content string) VersionMarker {
	h := sha1.New() //nolint:gosec // git object ids are SHA-1
	fmt.Fprintf(h, "blob %d\x00", len(content))
	h.Write([]byte(content))
	return VersionMarker(hex.EncodeToString(h.Sum(nil)))
}

// DocumentSnapshot is one observed state of the remote document.
// It is immutable once constructed.
type DocumentSnapshot struct {
	Version VersionMarker
	Content string
}

// NewDocumentSnapshot validates the marker and builds a snapshot.
func NewDocumentSnapshot(version, content string) (*DocumentSnapshot, error) {
	v, err := ParseVersionMarker(version)
	if err != nil {
		return nil, err
	}
	return &DocumentSnapshot{Version: v, Content: content}, nil
}

// Target identifies the file being synchronised.
type Target struct {
	Owner  string
	Repo   string
	Path   string
	Branch string
}

// Default target values.
const (
	DefaultRepo   = "testrepo"
	DefaultPath   = "README.md"
	DefaultBranch = "main"
)

// String renders the target as owner/repo:path@branch.
func (t Target) String() string {
	return fmt.Sprintf("%s/%s:%s@%s", t.Owner, t.Repo, t.Path, t.Branch)
}

// CacheKey returns a stable key for per-target caches.
func (t Target) CacheKey() string {
	return fmt.Sprintf("%s/%s@%s:%s", t.Owner, t.Repo, t.Branch, t.Path)
}

// CachedContent is the last raw read of a target, kept for conditional requests.
type CachedContent struct {
	ETag    string
	Content string
}
