package aggregator

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newsportal/pkg/aggregator/mocks"
	"github.com/umputun/newsportal/pkg/domain"
	"github.com/umputun/newsportal/pkg/feed"
)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func item(link string, age time.Duration) domain.FeedItem {
	return domain.FeedItem{Title: "title " + link, Link: link, Published: baseTime.Add(-age)}
}

func TestAggregator_Section(t *testing.T) {
	sources := map[string][]domain.Source{
		"economia": {
			{URL: "https://a.example.com/rss", Name: "A"},
			{URL: "https://b.example.com/rss", Name: "B"},
			{URL: "https://c.example.com/rss", Name: "C"},
		},
	}

	t.Run("merge, dedup and sort", func(t *testing.T) {
		fetcher := &mocks.FetcherMock{
			FetchFunc: func(ctx context.Context, src domain.Source, section string) []domain.FeedItem {
				switch src.Name {
				case "A":
					return []domain.FeedItem{item("https://x.com/1", 3*time.Hour), item("https://x.com/2", time.Hour)}
				case "B":
					dup := item("http://x.com/1/", 0)
					dup.Title = "duplicate"
					return []domain.FeedItem{dup, item("https://x.com/3", 2*time.Hour)}
				}
				return nil
			},
		}

		agg := New(fetcher, Config{Sections: sources})
		items, err := agg.Section(context.Background(), "economia")
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "https://x.com/2", items[0].Link)
		assert.Equal(t, "https://x.com/3", items[1].Link)
		assert.Equal(t, "https://x.com/1", items[2].Link, "first seen wins over a newer duplicate")
		assert.Equal(t, "title https://x.com/1", items[2].Title)

		require.Len(t, fetcher.FetchCalls(), 3)
		for _, c := range fetcher.FetchCalls() {
			assert.Equal(t, "economia", c.Section)
		}
	})

	t.Run("cap", func(t *testing.T) {
		fetcher := &mocks.FetcherMock{
			FetchFunc: func(ctx context.Context, src domain.Source, section string) []domain.FeedItem {
				res := make([]domain.FeedItem, 0, 10)
				for i := range 10 {
					res = append(res, item(fmt.Sprintf("https://%s/%d", src.Name, i), time.Duration(i)*time.Minute))
				}
				return res
			},
		}

		items, err := New(fetcher, Config{Sections: sources, MaxItems: 5}).Section(context.Background(), "economia")
		require.NoError(t, err)
		require.Len(t, items, 5)
		// newest three are minute zero of each source, in source order
		assert.Equal(t, "https://A/0", items[0].Link)
		assert.Equal(t, "https://B/0", items[1].Link)
		assert.Equal(t, "https://C/0", items[2].Link)
		assert.Equal(t, "https://A/1", items[3].Link)
	})

	t.Run("default cap", func(t *testing.T) {
		fetcher := &mocks.FetcherMock{
			FetchFunc: func(ctx context.Context, src domain.Source, section string) []domain.FeedItem {
				res := make([]domain.FeedItem, 0, 30)
				for i := range 30 {
					res = append(res, item(fmt.Sprintf("https://%s/%d", src.Name, i), time.Duration(i)*time.Second))
				}
				return res
			},
		}
		items, err := New(fetcher, Config{Sections: sources}).Section(context.Background(), "economia")
		require.NoError(t, err)
		assert.Len(t, items, DefaultMaxItems)
	})

	t.Run("fault isolation", func(t *testing.T) {
		fetcher := &mocks.FetcherMock{
			FetchFunc: func(ctx context.Context, src domain.Source, section string) []domain.FeedItem {
				if src.Name == "B" {
					return nil // failed source
				}
				return []domain.FeedItem{item("https://"+src.Name+"/1", time.Hour), item("https://"+src.Name+"/2", 0)}
			},
		}
		items, err := New(fetcher, Config{Sections: sources}).Section(context.Background(), "economia")
		require.NoError(t, err)
		require.Len(t, items, 4)
		assertSorted(t, items)
	})

	t.Run("unknown section", func(t *testing.T) {
		fetcher := &mocks.FetcherMock{}
		items, err := New(fetcher, Config{Sections: sources}).Section(context.Background(), "culinaria")
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
		assert.Empty(t, fetcher.FetchCalls())
	})

	t.Run("all sources fail", func(t *testing.T) {
		fetcher := &mocks.FetcherMock{
			FetchFunc: func(ctx context.Context, src domain.Source, section string) []domain.FeedItem { return nil },
		}
		items, err := New(fetcher, Config{Sections: sources}).Section(context.Background(), "economia")
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("panic in fetch", func(t *testing.T) {
		fetcher := &mocks.FetcherMock{
			FetchFunc: func(ctx context.Context, src domain.Source, section string) []domain.FeedItem {
				if src.Name == "C" {
					panic("boom")
				}
				return nil
			},
		}
		_, err := New(fetcher, Config{Sections: sources}).Section(context.Background(), "economia")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "aggregate section economia")
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("fetches run concurrently", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(3)
		fetcher := &mocks.FetcherMock{
			FetchFunc: func(ctx context.Context, src domain.Source, section string) []domain.FeedItem {
				wg.Done()
				wg.Wait() // blocks unless all three sources are in flight
				return []domain.FeedItem{item("https://"+src.Name, 0)}
			},
		}
		done := make(chan struct{})
		go func() {
			defer close(done)
			items, err := New(fetcher, Config{Sections: sources}).Section(context.Background(), "economia")
			assert.NoError(t, err)
			assert.Len(t, items, 3)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("section fetches are not concurrent")
		}
	})
}

// tecnologia with one healthy source serving three items and one source that never answers in time
func TestAggregator_SectionWithTimedOutSource(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		_, _ = w.Write([]byte(`<rss><channel>
<item><title>Velho</title><link>https://tec.example.com/1</link><pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate></item>
<item><title>Novo</title><link>https://tec.example.com/2</link><pubDate>Wed, 03 Jan 2024 10:00:00 GMT</pubDate></item>
<item><title>Meio</title><link>https://tec.example.com/3</link><pubDate>Tue, 02 Jan 2024 10:00:00 GMT</pubDate></item>
</channel></rss>`))
	}))
	defer good.Close()

	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(5 * time.Second):
		}
	}))
	defer slow.Close()
	defer close(release)

	var mu sync.Mutex
	var logs []string
	logger := lgr.Func(func(format string, args ...interface{}) {
		mu.Lock()
		defer mu.Unlock()
		logs = append(logs, fmt.Sprintf(format, args...))
	})

	fetcher := feed.NewHTTPFetcher(feed.FetcherConfig{Timeout: 100 * time.Millisecond, Logger: logger})
	agg := New(fetcher, Config{Sections: map[string][]domain.Source{
		"tecnologia": {{URL: good.URL, Name: "Tec"}, {URL: slow.URL, Name: "Lento"}},
	}})

	items, err := agg.Section(context.Background(), "tecnologia")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Novo", items[0].Title)
	assert.Equal(t, "Meio", items[1].Title)
	assert.Equal(t, "Velho", items[2].Title)
	assertSorted(t, items)

	mu.Lock()
	defer mu.Unlock()
	found := false
	for _, l := range logs {
		if strings.Contains(l, "[WARN] failed to fetch Lento ("+slow.URL+")") {
			found = true
		}
	}
	assert.True(t, found, "timed out source logged, got %v", logs)
}

func TestDedup(t *testing.T) {
	items := []domain.FeedItem{
		item("https://x.com/a", 0),
		item("http://x.com/a", time.Hour),
		item("https://x.com/a/", time.Hour),
		item("HTTPS://x.com/a", time.Hour),
		item("https://x.com/A", time.Hour),
		item("https://x.com/b", time.Hour),
	}

	res := Dedup(items)
	require.Len(t, res, 3)
	assert.Equal(t, "https://x.com/a", res[0].Link)
	assert.Equal(t, "https://x.com/A", res[1].Link, "path case is significant")
	assert.Equal(t, "https://x.com/b", res[2].Link)

	assert.Equal(t, res, Dedup(res), "dedup is idempotent")
	assert.Empty(t, Dedup(nil))
}

func TestDedupKey(t *testing.T) {
	tests := []struct{ in, want string }{
		{in: "https://x.com/a", want: "x.com/a"},
		{in: "http://x.com/a/", want: "x.com/a"},
		{in: "HTTP://x.com", want: "x.com"},
		{in: "x.com/a//", want: "x.com/a/"},
		{in: " https://x.com/a ", want: "x.com/a"},
		{in: "ftp://x.com/a", want: "ftp://x.com/a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DedupKey(tt.in), tt.in)
	}
}

func TestSortByDate(t *testing.T) {
	rnd := rand.New(rand.NewSource(42)) //nolint:gosec // test data
	items := make([]domain.FeedItem, 100)
	for i := range items {
		items[i] = item(fmt.Sprintf("https://x.com/%d", i), time.Duration(rnd.Intn(20))*time.Hour)
	}

	res := SortByDate(items)
	assertSorted(t, res)

	// equal dates keep input order
	seen := map[time.Time]int{}
	for _, it := range res {
		var n int
		_, _ = fmt.Sscanf(strings.TrimPrefix(it.Link, "https://x.com/"), "%d", &n)
		if prev, ok := seen[it.Published]; ok {
			assert.Greater(t, n, prev)
		}
		seen[it.Published] = n
	}
}

func assertSorted(t *testing.T, items []domain.FeedItem) {
	t.Helper()
	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].Published.After(items[i-1].Published), "items %d and %d out of order", i-1, i)
	}
}
