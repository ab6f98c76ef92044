// Package bolt provides a bbolt-backed content cache so conditional reads
// survive restarts.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/custodia-labs/docwatch/internal/core/domain"
	"github.com/custodia-labs/docwatch/internal/core/ports/driven"
)

var bucketContent = []byte("content")

// Ensure ContentCache implements the interface.
var _ driven.ContentCache = (*ContentCache)(nil)

// ContentCache stores the last raw read per target in a bbolt file.
type ContentCache struct {
	db   *bbolt.DB
	path string
}

// Open opens or creates cache.db in dataDir. It gives up after a second if
// another process holds the file lock.
func Open(dataDir string) (*ContentCache, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	path := filepath.Join(dataDir, "cache.db")

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketContent)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create content bucket: %w", err)
	}

	return &ContentCache{db: db, path: path}, nil
}

// Close closes the database.
func (c *ContentCache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the database file path.
func (c *ContentCache) Path() string {
	return c.path
}

// Get returns domain.ErrNotFound for unknown keys.
func (c *ContentCache) Get(_ context.Context, key string) (*domain.CachedContent, error) {
	var entry domain.CachedContent
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketContent).Get([]byte(key))
		if data == nil {
			return domain.ErrNotFound
		}
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Put stores content under key.
func (c *ContentCache) Put(_ context.Context, key string, content domain.CachedContent) error {
	data, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketContent).Put([]byte(key), data)
	})
}

// Delete removes key. Missing keys are ignored.
func (c *ContentCache) Delete(_ context.Context, key string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketContent).Delete([]byte(key))
	})
}
