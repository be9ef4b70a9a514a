package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/alluvial/pkg/observability"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/override"
)

// flakyStore fails reads or writes for selected keys.
type flakyStore struct {
	*MemoryStore
	failGet map[string]bool
	failSet bool
}

func (s *flakyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.failGet[key] {
		return nil, false, errors.New("read failed")
	}
	return s.MemoryStore.Get(ctx, key)
}

func (s *flakyStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if s.failSet {
		return errors.New("write failed")
	}
	return s.MemoryStore.Set(ctx, key, data, ttl)
}

// countingStore records writes per key.
type countingStore struct {
	*MemoryStore
	mu     sync.Mutex
	writes map[string]int
}

func (s *countingStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	s.mu.Lock()
	s.writes[key]++
	s.mu.Unlock()
	return s.MemoryStore.Set(ctx, key, data, ttl)
}

type storeEvents struct {
	observability.NoopStoreHooks
	mu        sync.Mutex
	fallbacks []string
	errors    int
}

func (h *storeEvents) OnRecordFallback(_ context.Context, record string, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fallbacks = append(h.fallbacks, record)
}

func (h *storeEvents) OnRecordWriteError(context.Context, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors++
}

func sampleSet() override.Set {
	s := override.NewSet()
	s.Offsets["a"] = override.Offset{DX: 4, DY: -2}
	s.Sizes["b"] = override.Size{Width: 90, Height: 44}
	s.Borders[1] = false
	s.Texts[0] = false
	s.Labels[2] = override.Offset{DX: 10}
	return s
}

func TestRepositoryLoadEmpty(t *testing.T) {
	repo := NewRepository(NewMemoryStore())
	assert.True(t, repo.Load(context.Background(), "d").IsZero())
}

func TestRepositorySaveLoad(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryStore())
	want := sampleSet()
	for _, rec := range override.Records {
		require.NoError(t, repo.Save(ctx, "d", rec, want))
	}

	got := repo.Load(ctx, "d")
	assert.Equal(t, want.Offsets, got.Offsets)
	assert.Equal(t, want.Sizes, got.Sizes)
	assert.Equal(t, want.Borders, got.Borders)
	assert.Equal(t, want.Texts, got.Texts)
	assert.Equal(t, want.Labels, got.Labels)
	assert.True(t, repo.Load(ctx, "other").IsZero(), "diagrams are isolated")
}

func TestRepositoryLoadFallback(t *testing.T) {
	events := &storeEvents{}
	observability.SetStoreHooks(events)
	defer observability.Reset()

	ctx := context.Background()
	mem := NewMemoryStore()
	keyer := NewDefaultKeyer()
	seed := NewRepository(mem)
	require.NoError(t, seed.Save(ctx, "d", override.RecordOffsets, sampleSet()))
	require.NoError(t, seed.Save(ctx, "d", override.RecordSizes, sampleSet()))
	require.NoError(t, mem.Set(ctx, keyer.RecordKey("d", override.RecordLabels), []byte("{broken"), 0))

	s := &flakyStore{MemoryStore: mem, failGet: map[string]bool{keyer.RecordKey("d", override.RecordSizes): true}}
	got := NewRepository(s).Load(ctx, "d")

	assert.Equal(t, override.Offset{DX: 4, DY: -2}, got.Offset("a"), "readable records still load")
	_, ok := got.Size("b")
	assert.False(t, ok, "unreadable record falls back to empty")
	assert.Empty(t, got.Labels, "corrupt record falls back to empty")
	assert.ElementsMatch(t, []string{string(override.RecordSizes), string(override.RecordLabels)}, events.fallbacks)
}

func TestRepositorySaveError(t *testing.T) {
	events := &storeEvents{}
	observability.SetStoreHooks(events)
	defer observability.Reset()

	repo := NewRepository(&flakyStore{MemoryStore: NewMemoryStore(), failSet: true})
	err := repo.Save(context.Background(), "d", override.RecordOffsets, sampleSet())
	assert.Error(t, err)
	assert.Equal(t, 1, events.errors)
}

func TestRepositoryCommitter(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryStore())
	e := override.NewEditor(override.NewSet(), repo.Committer(ctx, "d"))

	require.NoError(t, e.BeginDrag(override.NodeTarget("a")))
	require.NoError(t, e.Move(7, 3))
	require.NoError(t, e.End())
	e.Toggle(override.VisBox, 2)
	repo.Flush()

	got := repo.Load(ctx, "d")
	assert.Equal(t, override.Offset{DX: 7, DY: 3}, got.Offset("a"))
	assert.False(t, got.BoxVisible(2))

	e.Reset()
	repo.Flush()
	assert.True(t, repo.Load(ctx, "d").IsZero(), "editor reset clears persisted records")
}

func TestRepositoryLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := &countingStore{MemoryStore: NewMemoryStore(), writes: make(map[string]int)}
	repo := NewRepository(s)
	c := repo.Committer(ctx, "d")

	const n = 50
	for i := 1; i <= n; i++ {
		set := override.NewSet()
		set.Offsets["a"] = override.Offset{DX: float64(i)}
		c.Commit(override.RecordOffsets, set)
	}
	repo.Flush()

	assert.Equal(t, float64(n), repo.Load(ctx, "d").Offset("a").DX, "newest commit must win")
	key := repo.Keyer().RecordKey("d", override.RecordOffsets)
	assert.LessOrEqual(t, s.writes[key], n)
	assert.GreaterOrEqual(t, s.writes[key], 1)
}

func TestRepositoryReset(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	repo := NewRepository(mem)
	for _, rec := range override.Records {
		require.NoError(t, repo.Save(ctx, "d", rec, sampleSet()))
	}
	require.NoError(t, repo.Save(ctx, "keep", override.RecordOffsets, sampleSet()))

	require.NoError(t, repo.Reset(ctx, "d"))
	assert.True(t, repo.Load(ctx, "d").IsZero())
	assert.False(t, repo.Load(ctx, "keep").IsZero(), "reset must only touch one diagram")
	assert.Equal(t, 1, mem.Len())
}

func TestRepositoryScopedKeys(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	a := NewRepository(mem, WithKeyer(NewScopedKeyer(nil, "a:")))
	b := NewRepository(mem, WithKeyer(NewScopedKeyer(nil, "b:")))
	require.NoError(t, a.Save(ctx, "d", override.RecordOffsets, sampleSet()))
	assert.True(t, b.Load(ctx, "d").IsZero(), "scopes must not share records")
	assert.False(t, a.Load(ctx, "d").IsZero())
}

func TestRepositoryTTL(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	now := time.Unix(0, 0)
	mem.now = func() time.Time { return now }
	repo := NewRepository(mem, WithTTL(time.Hour))
	require.NoError(t, repo.Save(ctx, "d", override.RecordOffsets, sampleSet()))
	now = now.Add(2 * time.Hour)
	assert.True(t, repo.Load(ctx, "d").IsZero(), fmt.Sprintf("records should expire after %v", time.Hour))
}
