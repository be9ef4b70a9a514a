package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok, "missing key should be a miss")

	require.NoError(t, s.Set(ctx, "k", []byte("v1"), 0))
	require.NoError(t, s.Set(ctx, "k", []byte("v2"), 0))
	data, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v2", string(data), "Set should overwrite")

	require.NoError(t, s.Delete(ctx, "k"))
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "deleted key should be a miss")
	assert.NoError(t, s.Delete(ctx, "k"), "deleting twice is not an error")
}

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	s := NewNullStore()
	defer s.Close()

	require.NoError(t, s.Set(ctx, "key", []byte("value"), time.Hour))
	data, ok, err := s.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)
	assert.NoError(t, s.Delete(ctx, "key"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Unix(1000, 0)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	_, ok, _ := s.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = s.Get(ctx, "k")
	assert.False(t, ok, "entry should expire")
	assert.Equal(t, 0, s.Len(), "expired entry should be evicted")
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf, 0))
	buf[0] = 'x'
	data, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(data))
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "overrides"))
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestFileStoreCorruptEntry(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, os.WriteFile(s.path("k"), []byte("{not json"), 0644))

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "corrupt entry should be a miss")
	_, statErr := os.Stat(s.path("k"))
	assert.True(t, os.IsNotExist(statErr), "corrupt entry should be removed")
}

func TestFileStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Nanosecond))
	time.Sleep(time.Millisecond)
	_, ok, _ := s.Get(ctx, "k")
	assert.False(t, ok)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "db", "overrides.db"))
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "short", []byte("v"), time.Nanosecond))
	time.Sleep(time.Millisecond)
	_, ok, err := s.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok, "expired row should be a miss")
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		url  string
		want any
	}{
		{"", &MemoryStore{}},
		{"memory:", &MemoryStore{}},
		{"null:", &NullStore{}},
		{"file://" + filepath.Join(dir, "files"), &FileStore{}},
		{"sqlite://" + filepath.Join(dir, "s.db"), &SQLiteStore{}},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			s, err := Open(ctx, tt.url)
			require.NoError(t, err)
			defer s.Close()
			assert.IsType(t, tt.want, s)
		})
	}
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, "ftp://example.com")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)

	_, err = Open(ctx, "file://")
	assert.ErrorIs(t, err, ErrInvalidURL)

	_, err = Open(ctx, "redis://localhost/notanumber")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestMongoDatabase(t *testing.T) {
	assert.Equal(t, "flows", mongoDatabase("mongodb://localhost:27017/flows"))
	assert.Equal(t, DefaultMongoDatabase, mongoDatabase("mongodb://localhost:27017"))
	assert.Equal(t, DefaultMongoDatabase, mongoDatabase("mongodb://localhost:27017/"))
}

func TestHash(t *testing.T) {
	h1 := Hash("hello")
	assert.Equal(t, h1, Hash("hello"), "Hash should be deterministic")
	assert.NotEqual(t, h1, Hash("world"))
	assert.Len(t, h1, 64)
	assert.NotEqual(t, Hash("ab", "c"), Hash("a", "bc"))
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", h1)
}

func TestPingWithBackoff(t *testing.T) {
	defer func(d time.Duration) { pingDelay = d }(pingDelay)
	pingDelay = time.Millisecond
	ctx := context.Background()

	calls := 0
	err := pingWithBackoff(ctx, "redis localhost:6379", func(context.Context) error {
		calls++
		if calls < pingAttempts {
			return errors.New("connection refused")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, pingAttempts, calls)

	calls = 0
	err = pingWithBackoff(ctx, "mongodb", func(context.Context) error {
		calls++
		return errors.New("server selection timeout")
	})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "mongodb: server selection timeout")
	assert.Equal(t, pingAttempts, calls)
}

func TestPingWithBackoffCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := pingWithBackoff(ctx, "redis", func(context.Context) error { return errors.New("down") })
	assert.ErrorIs(t, err, context.Canceled)
}
