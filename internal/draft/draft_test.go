package draft_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mwhitney/accountability-game/internal/draft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpserter struct {
	mu      sync.Mutex
	calls   map[string]int
	failing map[string]bool
}

func newFakeUpserter() *fakeUpserter {
	return &fakeUpserter{
		calls:   make(map[string]int),
		failing: make(map[string]bool),
	}
}

func (f *fakeUpserter) Upsert(ctx context.Context, key string, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[key]++
	if f.failing[key] {
		return errors.New("transient store error")
	}
	return nil
}

func (f *fakeUpserter) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeUpserter) setFailing(key string, failing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[key] = failing
}

// blockingUpserter parks its first call until released, so a test can
// edit a row while that row's upsert is in flight.
type blockingUpserter struct {
	mu      sync.Mutex
	last    map[string]string
	block   bool
	entered chan struct{}
	release chan struct{}
}

func newBlockingUpserter() *blockingUpserter {
	return &blockingUpserter{
		last:    make(map[string]string),
		block:   true,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (b *blockingUpserter) Upsert(ctx context.Context, key string, value string) error {
	b.mu.Lock()
	shouldBlock := b.block
	b.block = false
	b.mu.Unlock()

	if shouldBlock {
		b.entered <- struct{}{}
		<-b.release
	}

	b.mu.Lock()
	b.last[key] = value
	b.mu.Unlock()
	return nil
}

func (b *blockingUpserter) lastValue(key string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last[key]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestSeedDoesNotMarkDirty(t *testing.T) {
	up := newFakeUpserter()
	set := draft.NewSet[string](up, draft.WithInterval[string](10*time.Millisecond))
	defer set.Close()

	set.Seed("vision", "loaded from server")

	time.Sleep(50 * time.Millisecond)
	assert.False(t, set.Dirty())
	assert.Equal(t, 0, up.callCount("vision"), "initial load must not trigger a save")
}

func TestPeriodicFlushPersistsWithoutBlur(t *testing.T) {
	up := newFakeUpserter()
	set := draft.NewSet[string](up, draft.WithInterval[string](10*time.Millisecond))
	defer set.Close()

	set.Seed("vision", "old")
	set.Set("vision", "edited")
	require.True(t, set.Dirty())

	// No CommitField; the interval alone must persist and clear dirty.
	waitFor(t, func() bool { return !set.Dirty() })
	assert.GreaterOrEqual(t, up.callCount("vision"), 1)
	assert.False(t, set.LastSavedAt().IsZero())
}

func TestCommitFieldIsImmediate(t *testing.T) {
	up := newFakeUpserter()
	set := draft.NewSet[string](up, draft.WithInterval[string](time.Hour))
	defer set.Close()

	set.Set("key-results/1", "ship it")

	require.NoError(t, set.CommitField(context.Background(), "key-results/1"))
	assert.Equal(t, 1, up.callCount("key-results/1"))
	assert.False(t, set.Dirty(), "committing the only dirty row cleans the set")
}

func TestFailedUpsertKeepsDirtyAndRetries(t *testing.T) {
	up := newFakeUpserter()
	up.setFailing("why", true)

	set := draft.NewSet[string](up, draft.WithInterval[string](10*time.Millisecond))
	defer set.Close()

	set.Set("why", "because")
	set.Set("vision", "clear")

	// The failing row keeps the set dirty; the sibling is not rolled back.
	waitFor(t, func() bool { return up.callCount("vision") >= 1 && up.callCount("why") >= 2 })
	assert.True(t, set.Dirty())

	up.setFailing("why", false)
	waitFor(t, func() bool { return !set.Dirty() })
}

func TestFlushNowRunsFullBatch(t *testing.T) {
	up := newFakeUpserter()
	set := draft.NewSet[string](up, draft.WithInterval[string](time.Hour))
	defer set.Close()

	set.Set("vision", "a")
	set.Set("why", "b")
	set.Set("commitments/1", "c")

	set.FlushNow(context.Background())

	assert.Equal(t, 1, up.callCount("vision"))
	assert.Equal(t, 1, up.callCount("why"))
	assert.Equal(t, 1, up.callCount("commitments/1"))
	assert.False(t, set.Dirty())
}

func TestEditDuringFlushIsNotLost(t *testing.T) {
	up := newBlockingUpserter()
	set := draft.NewSet[string](up, draft.WithInterval[string](time.Hour))
	defer set.Close()

	set.Set("vision", "v1")

	done := make(chan struct{})
	go func() {
		set.FlushNow(context.Background())
		close(done)
	}()

	// The flush has snapshotted v1 and is mid-upsert; edit underneath it.
	<-up.entered
	set.Set("vision", "v2")
	close(up.release)
	<-done

	assert.Equal(t, "v1", up.lastValue("vision"))
	assert.True(t, set.Dirty(), "the mid-flight edit must keep the set dirty")

	set.FlushNow(context.Background())
	assert.Equal(t, "v2", up.lastValue("vision"))
	assert.False(t, set.Dirty())
}

func TestEditDuringCommitFieldStaysDirty(t *testing.T) {
	up := newBlockingUpserter()
	set := draft.NewSet[string](up, draft.WithInterval[string](time.Hour))
	defer set.Close()

	set.Set("why", "w1")

	done := make(chan error, 1)
	go func() {
		done <- set.CommitField(context.Background(), "why")
	}()

	<-up.entered
	set.Set("why", "w2")
	close(up.release)
	require.NoError(t, <-done)

	assert.Equal(t, "w1", up.lastValue("why"))
	assert.True(t, set.Dirty(), "a commit racing an edit must not mark the row clean")

	set.FlushNow(context.Background())
	assert.Equal(t, "w2", up.lastValue("why"))
	assert.False(t, set.Dirty())
}

func TestForgetDropsRow(t *testing.T) {
	up := newFakeUpserter()
	set := draft.NewSet[string](up, draft.WithInterval[string](time.Hour))
	defer set.Close()

	set.Set("projects/9", "abandoned")
	set.Forget("projects/9")

	set.FlushNow(context.Background())
	assert.Equal(t, 0, up.callCount("projects/9"))
}
