// Package draft keeps client-held editable copies of goal-record rows
// durable without an explicit save per keystroke. A Set tracks one
// Draft per row, flushes single rows on field blur and the whole batch
// on a timer, and tolerates individual upsert failures by leaving the
// row dirty for the next tick.
package draft

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Upserter persists one row by its stable storage key. Implementations
// must be idempotent: the same key re-upserted after a partial failure
// lands on the same row.
type Upserter[E any] interface {
	Upsert(ctx context.Context, key string, value E) error
}

// Draft wraps one row's in-memory value with its sync state. gen
// counts edits so an in-flight upsert can tell whether the row was
// re-edited while the mutex was released; only the generation that was
// snapshotted may clear the dirty bit.
type Draft[E any] struct {
	Value      E
	Dirty      bool
	LastSynced time.Time

	gen uint64
}

const DefaultFlushInterval = 30 * time.Second

// Set is a keyed draft collection with a periodic flush loop. All
// reads of draft state happen under the mutex at flush time, so the
// long-lived timer goroutine never operates on stale values.
type Set[E any] struct {
	mu        sync.Mutex
	drafts    map[string]*Draft[E]
	dirty     bool
	lastSaved time.Time

	upserter Upserter[E]
	interval time.Duration
	log      logrus.FieldLogger

	done     chan struct{}
	stopOnce sync.Once
}

type Option[E any] func(*Set[E])

func WithInterval[E any](d time.Duration) Option[E] {
	return func(s *Set[E]) { s.interval = d }
}

func WithLogger[E any](log logrus.FieldLogger) Option[E] {
	return func(s *Set[E]) { s.log = log }
}

// NewSet starts the periodic flush loop; call Close when the editing
// view goes away.
func NewSet[E any](upserter Upserter[E], opts ...Option[E]) *Set[E] {
	s := &Set[E]{
		drafts:   make(map[string]*Draft[E]),
		upserter: upserter,
		interval: DefaultFlushInterval,
		log:      logrus.StandardLogger(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.loop()
	return s
}

// Seed records a row loaded from the server without marking anything
// dirty, so the initial render does not schedule a save.
func (s *Set[E]) Seed(key string, value E) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[key]
	if !ok {
		d = &Draft[E]{}
		s.drafts[key] = d
	}
	d.Value = value
	d.Dirty = false
	d.LastSynced = time.Now()
	d.gen++
}

// Set records an edit and marks the row and the set dirty.
func (s *Set[E]) Set(key string, value E) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[key]
	if !ok {
		d = &Draft[E]{}
		s.drafts[key] = d
	}
	d.Value = value
	d.Dirty = true
	d.gen++
	s.dirty = true
}

// Forget drops a row from the set, e.g. after its owner deleted it.
func (s *Set[E]) Forget(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, key)
}

// CommitField upserts a single row immediately, independent of the
// global dirty flag. Used on field blur. An edit landing while the
// upsert is in flight keeps the row dirty for the next flush.
func (s *Set[E]) CommitField(ctx context.Context, key string) error {
	s.mu.Lock()
	d, ok := s.drafts[key]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	value := d.Value
	gen := d.gen
	s.mu.Unlock()

	if err := s.upserter.Upsert(ctx, key, value); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Field commit failed; next flush retries")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.drafts[key]; ok && d.gen == gen {
		d.Dirty = false
		d.LastSynced = time.Now()
	}
	s.recomputeDirtyLocked()
	return nil
}

// FlushNow runs the full batch immediately; the "save now" action. The
// Set itself is stage-agnostic; callers expose the action only while
// the game is still in setup.
func (s *Set[E]) FlushNow(ctx context.Context) {
	s.flush(ctx, true)
}

func (s *Set[E]) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

func (s *Set[E]) LastSavedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved
}

// Close tears down the flush timer. It does not run a final flush;
// callers wanting one call FlushNow first.
func (s *Set[E]) Close() {
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *Set[E]) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.flush(context.Background(), false)
		case <-s.done:
			return
		}
	}
}

// flush upserts every row as an independent concurrent request. A
// failed row keeps its dirty bit and the set stays dirty, so the next
// tick retries the whole batch; rows are addressed by stable keys, so
// the retry is idempotent. A row re-edited while its upsert was in
// flight also stays dirty: the flushed generation no longer matches,
// so the newer value is persisted on the next pass instead of being
// silently dropped.
func (s *Set[E]) flush(ctx context.Context, force bool) {
	s.mu.Lock()
	if !s.dirty && !force {
		s.mu.Unlock()
		return
	}

	keys := make([]string, 0, len(s.drafts))
	values := make([]E, 0, len(s.drafts))
	gens := make(map[string]uint64, len(s.drafts))
	for key, d := range s.drafts {
		keys = append(keys, key)
		values = append(values, d.Value)
		gens[key] = d.gen
	}
	s.mu.Unlock()

	type result struct {
		key string
		err error
	}

	results := make(chan result, len(keys))
	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Add(1)
		go func(key string, value E) {
			defer wg.Done()
			results <- result{key: key, err: s.upserter.Upsert(ctx, key, value)}
		}(key, values[i])
	}
	wg.Wait()
	close(results)

	now := time.Now()
	clean := true

	s.mu.Lock()
	defer s.mu.Unlock()
	for res := range results {
		d, ok := s.drafts[res.key]
		if !ok {
			continue
		}
		if res.err != nil {
			s.log.WithError(res.err).WithField("key", res.key).Warn("Batch upsert failed; row stays dirty")
			clean = false
			continue
		}
		if d.gen != gens[res.key] {
			clean = false
			continue
		}
		d.Dirty = false
		d.LastSynced = now
	}

	if clean {
		s.dirty = false
		s.lastSaved = now
	}
}

func (s *Set[E]) recomputeDirtyLocked() {
	for _, d := range s.drafts {
		if d.Dirty {
			return
		}
	}
	s.dirty = false
}
