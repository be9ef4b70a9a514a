// Package store persists override records in a key-value backend.
//
// # Backends
//
// Every backend implements [Store], a minimal byte-oriented key-value
// interface with optional expiry:
//   - memory: in-process map, for tests and single-shot CLI runs
//   - null: stores nothing, disables persistence
//   - file: JSON entry files under a directory, for CLI usage
//   - redis: shared storage for multi-instance API deployments
//   - mongodb: document storage, one document per record
//   - sqlite: a single local database file
//
// [Open] selects a backend from a URL:
//
//	s, err := store.Open(ctx, "sqlite:///var/lib/alluvial/overrides.db")
//	s, err := store.Open(ctx, "redis://localhost:6379/0")
//	s, err := store.Open(ctx, "file:///home/me/.config/alluvial/overrides")
//
// # Records
//
// A [Repository] maps a diagram's six override records onto store keys
// produced by a [Keyer]. Reads that fail fall back to an empty record;
// writes from an editor happen in the background, last write wins.
package store

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Store is a byte-oriented key-value store. A ttl of zero means no expiry.
// Get reports a missing or expired key as (nil, false, nil).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open creates the store described by rawURL. An empty URL selects the
// memory store.
//
// Supported schemes: memory:, null:, file://<dir>, redis://, rediss://,
// mongodb://, mongodb+srv://, sqlite://<path>.
func Open(ctx context.Context, rawURL string) (Store, error) {
	if rawURL == "" {
		return NewMemoryStore(), nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	switch u.Scheme {
	case "memory":
		return NewMemoryStore(), nil
	case "null":
		return NewNullStore(), nil
	case "file":
		dir := localPath(u)
		if dir == "" {
			return nil, fmt.Errorf("%w: file store needs a directory", ErrInvalidURL)
		}
		return NewFileStore(dir)
	case "sqlite":
		path := localPath(u)
		if path == "" {
			return nil, fmt.Errorf("%w: sqlite store needs a database path", ErrInvalidURL)
		}
		return NewSQLiteStore(path)
	case "redis", "rediss":
		return NewRedisStore(ctx, rawURL)
	case "mongodb", "mongodb+srv":
		return NewMongoStore(ctx, rawURL)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
}

// localPath accepts both file:///abs/dir and file:rel/dir.
func localPath(u *url.URL) string {
	if u.Opaque != "" {
		return u.Opaque
	}
	return u.Host + u.Path
}
