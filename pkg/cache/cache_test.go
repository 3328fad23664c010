package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newsportal/pkg/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Add(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// stubBuilder counts builds, fn gets the build number
type stubBuilder struct {
	mu sync.Mutex
	n  int
	fn func(n int) (*domain.Document, error)
}

func (b *stubBuilder) Build(context.Context) (*domain.Document, error) {
	b.mu.Lock()
	b.n++
	n := b.n
	b.mu.Unlock()
	return b.fn(n)
}

func (b *stubBuilder) builds() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.n
}

// countingBuilder returns documents titled by build number
func countingBuilder() *stubBuilder {
	return &stubBuilder{fn: func(n int) (*domain.Document, error) {
		return domain.NewDocument(domain.Meta{Title: string(rune('0' + n))}, time.Now()), nil
	}}
}

func newTestCache(b Builder, cfg Config) (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New(b, nil, cfg)
	c.now = clock.Now
	return c, clock
}

func TestCache_Document(t *testing.T) {
	cfg := Config{TTL: 2 * time.Minute, Stale: time.Minute}

	t.Run("fresh snapshot served", func(t *testing.T) {
		builder := countingBuilder()
		c, clock := newTestCache(builder, cfg)

		doc, err := c.Document(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "1", doc.Title)

		clock.Add(time.Minute)
		doc, err = c.Document(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "1", doc.Title)
		assert.Equal(t, 1, builder.builds())
	})

	t.Run("stale snapshot served while refreshing", func(t *testing.T) {
		builder := countingBuilder()
		c, clock := newTestCache(builder, cfg)

		_, err := c.Document(context.Background())
		require.NoError(t, err)

		clock.Add(2*time.Minute + 30*time.Second)
		doc, err := c.Document(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "1", doc.Title, "stale document returned right away")

		c.Wait()
		assert.Equal(t, 2, builder.builds())

		doc, err = c.Document(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "2", doc.Title, "refreshed snapshot is fresh")
		assert.Equal(t, 2, builder.builds())
	})

	t.Run("expired snapshot rebuilt", func(t *testing.T) {
		builder := countingBuilder()
		c, clock := newTestCache(builder, cfg)

		_, err := c.Document(context.Background())
		require.NoError(t, err)

		clock.Add(3*time.Minute + time.Second)
		doc, err := c.Document(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "2", doc.Title)
		assert.Equal(t, 2, builder.builds())
	})

	t.Run("caching disabled", func(t *testing.T) {
		builder := countingBuilder()
		c, _ := newTestCache(builder, Config{TTL: 0, Stale: time.Minute})

		for range 3 {
			_, err := c.Document(context.Background())
			require.NoError(t, err)
		}
		assert.Equal(t, 3, builder.builds())
	})

	t.Run("build error", func(t *testing.T) {
		builder := &stubBuilder{fn: func(int) (*domain.Document, error) {
			return nil, errors.New("assemble feed: boom")
		}}
		c, _ := newTestCache(builder, cfg)

		doc, err := c.Document(context.Background())
		require.Error(t, err)
		assert.Nil(t, doc)
		assert.EqualError(t, err, "build document: assemble feed: boom")

		_, ok, err := c.store.Load(context.Background())
		require.NoError(t, err)
		assert.False(t, ok, "failed build not stored")
	})

	t.Run("concurrent cold requests share one build", func(t *testing.T) {
		builder := &stubBuilder{fn: func(int) (*domain.Document, error) {
			time.Sleep(100 * time.Millisecond)
			return domain.NewDocument(domain.Meta{Title: "shared"}, time.Now()), nil
		}}
		c, _ := newTestCache(builder, cfg)

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				doc, err := c.Document(context.Background())
				assert.NoError(t, err)
				assert.Equal(t, "shared", doc.Title)
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, builder.builds())
	})
}

func TestCache_Refresh(t *testing.T) {
	builder := countingBuilder()
	c, _ := newTestCache(builder, Config{TTL: time.Hour})

	_, err := c.Document(context.Background())
	require.NoError(t, err)
	require.NoError(t, c.Refresh(context.Background()))

	doc, err := c.Document(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2", doc.Title)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	_, ok, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	built := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	doc := domain.NewDocument(domain.Meta{Title: "t"}, built)
	require.NoError(t, s.Save(context.Background(), Snapshot{Document: doc, BuiltAt: built}))

	snap, ok, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Same(t, doc, snap.Document)
	assert.Equal(t, built, snap.BuiltAt)
}
