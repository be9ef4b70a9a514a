package store

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/alluvial/pkg/observability"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/override"
)

// Repository reads and writes the override records of diagrams.
//
// Reads never fail: a record that cannot be read or decoded is replaced by
// an empty record and a warning is logged. Background writes started
// through [Repository.Committer] are serialized per key; when several
// writes for a key are queued only the newest is performed.
type Repository struct {
	store  Store
	keyer  Keyer
	logger *log.Logger
	ttl    time.Duration

	mu       sync.Mutex
	versions map[string]uint64
	locks    map[string]*sync.Mutex
	pending  sync.WaitGroup
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithKeyer replaces the default key scheme.
func WithKeyer(k Keyer) RepositoryOption {
	return func(r *Repository) { r.keyer = k }
}

// WithLogger sets the logger for fallbacks and failed writes.
func WithLogger(l *log.Logger) RepositoryOption {
	return func(r *Repository) { r.logger = l }
}

// WithTTL expires records after d. Zero keeps them forever.
func WithTTL(d time.Duration) RepositoryOption {
	return func(r *Repository) { r.ttl = d }
}

// NewRepository creates a repository on top of s.
func NewRepository(s Store, opts ...RepositoryOption) *Repository {
	r := &Repository{
		store:    s,
		keyer:    NewDefaultKeyer(),
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		versions: make(map[string]uint64),
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Keyer returns the key scheme in use.
func (r *Repository) Keyer() Keyer { return r.keyer }

// Load reads all six records of a diagram concurrently.
func (r *Repository) Load(ctx context.Context, diagram string) override.Set {
	hooks := observability.Store()
	set := override.NewSet()
	var mu sync.Mutex

	var g errgroup.Group
	for _, rec := range override.Records {
		g.Go(func() error {
			data, ok, err := r.store.Get(ctx, r.keyer.RecordKey(diagram, rec))
			if err != nil {
				r.fallback(ctx, diagram, rec, err)
				return nil
			}
			hooks.OnRecordLoad(ctx, string(rec), ok)
			if !ok {
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			if err := set.Decode(rec, data); err != nil {
				r.fallback(ctx, diagram, rec, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return set
}

func (r *Repository) fallback(ctx context.Context, diagram string, rec override.Record, err error) {
	r.logger.Warn("override record unreadable, using empty record", "diagram", diagram, "record", rec, "err", err)
	observability.Store().OnRecordFallback(ctx, string(rec), err)
}

// Save writes one record synchronously.
func (r *Repository) Save(ctx context.Context, diagram string, rec override.Record, s override.Set) error {
	data, err := s.Encode(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", rec, err)
	}
	key := r.keyer.RecordKey(diagram, rec)
	r.bump(key)
	l := r.lock(key)
	l.Lock()
	defer l.Unlock()
	return r.write(ctx, diagram, rec, data)
}

func (r *Repository) write(ctx context.Context, diagram string, rec override.Record, data []byte) error {
	if err := r.store.Set(ctx, r.keyer.RecordKey(diagram, rec), data, r.ttl); err != nil {
		observability.Store().OnRecordWriteError(ctx, string(rec), err)
		return fmt.Errorf("write %s/%s: %w", diagram, rec, err)
	}
	observability.Store().OnRecordSave(ctx, string(rec), len(data))
	return nil
}

// Reset deletes all six records of a diagram and cancels queued writes.
func (r *Repository) Reset(ctx context.Context, diagram string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, rec := range override.Records {
		key := r.keyer.RecordKey(diagram, rec)
		r.bump(key)
		g.Go(func() error {
			l := r.lock(key)
			l.Lock()
			defer l.Unlock()
			if err := r.store.Delete(gctx, key); err != nil {
				return fmt.Errorf("delete %s/%s: %w", diagram, rec, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Committer returns an [override.Committer] that persists an editor's
// commits for diagram in the background. Writes outlive the cancellation
// of ctx; use [Repository.Flush] to wait for them.
func (r *Repository) Committer(ctx context.Context, diagram string) override.Committer {
	return &committer{repo: r, ctx: context.WithoutCancel(ctx), diagram: diagram}
}

// Flush blocks until every background write has finished.
func (r *Repository) Flush() { r.pending.Wait() }

// Close waits for background writes and closes the underlying store.
func (r *Repository) Close() error {
	r.Flush()
	return r.store.Close()
}

// bump invalidates queued writes for key and returns the new version.
func (r *Repository) bump(key string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.versions[key]++
	return r.versions[key]
}

func (r *Repository) current(key string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.versions[key]
}

func (r *Repository) lock(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}
	return l
}

// enqueue runs op in the background unless a newer operation on key is
// queued by the time it acquires the key's lock.
func (r *Repository) enqueue(key string, op func()) {
	v := r.bump(key)
	l := r.lock(key)
	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		l.Lock()
		defer l.Unlock()
		if r.current(key) != v {
			return
		}
		op()
	}()
}

type committer struct {
	repo    *Repository
	ctx     context.Context
	diagram string
}

// Commit encodes the record immediately and writes it in the background.
// Failed writes are logged; the editor keeps its in-memory state.
func (c *committer) Commit(rec override.Record, s override.Set) {
	r := c.repo
	data, err := s.Encode(rec)
	if err != nil {
		r.logger.Warn("override record not encodable", "diagram", c.diagram, "record", rec, "err", err)
		return
	}
	r.enqueue(r.keyer.RecordKey(c.diagram, rec), func() {
		if err := r.write(c.ctx, c.diagram, rec, data); err != nil {
			r.logger.Warn("override write failed", "diagram", c.diagram, "record", rec, "err", err)
		}
	})
}

// Reset deletes every record of the diagram in the background.
func (c *committer) Reset() {
	r := c.repo
	for _, rec := range override.Records {
		key := r.keyer.RecordKey(c.diagram, rec)
		r.enqueue(key, func() {
			if err := r.store.Delete(c.ctx, key); err != nil {
				r.logger.Warn("override delete failed", "diagram", c.diagram, "record", rec, "err", err)
			}
		})
	}
}
