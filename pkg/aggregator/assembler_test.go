package aggregator

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newsportal/pkg/aggregator/mocks"
	"github.com/umputun/newsportal/pkg/domain"
)

func TestAggregator_Build(t *testing.T) {
	sections := map[string][]domain.Source{
		"geral":      {{URL: "https://g.example.com/rss", Name: "G"}},
		"esportes":   {{URL: "https://e.example.com/rss", Name: "E"}},
		"tecnologia": {{URL: "https://t.example.com/rss", Name: "T"}},
	}
	meta := domain.Meta{Title: "Portal", Description: "desc", Link: "/"}

	t.Run("sections placed into items and categories", func(t *testing.T) {
		fetcher := &mocks.FetcherMock{
			FetchFunc: func(ctx context.Context, src domain.Source, section string) []domain.FeedItem {
				if src.Name == "T" {
					return nil
				}
				it := item("https://"+src.Name+"/1", 0)
				it.Section = section
				return []domain.FeedItem{it}
			},
		}

		st := time.Now()
		doc, err := New(fetcher, Config{Sections: sections, General: "geral", Meta: meta}).Build(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "Portal", doc.Title)
		assert.Equal(t, "desc", doc.Description)
		assert.Equal(t, "/", doc.Link)
		require.Len(t, doc.Items, 1)
		assert.Equal(t, "geral", doc.Items[0].Section)
		assert.Len(t, doc.Categories, 2)
		assert.Len(t, doc.Categories["esportes"], 1)
		assert.NotNil(t, doc.Categories["tecnologia"])
		assert.Empty(t, doc.Categories["tecnologia"])
		assert.NotContains(t, doc.Categories, "geral")
		assert.False(t, doc.LastBuildDate.Before(st.Truncate(time.Second)))
		assert.Equal(t, time.UTC, doc.LastBuildDate.Location())
		assert.Len(t, fetcher.FetchCalls(), 3)
	})

	t.Run("every source failing gives an empty document", func(t *testing.T) {
		fetcher := &mocks.FetcherMock{
			FetchFunc: func(ctx context.Context, src domain.Source, section string) []domain.FeedItem { return nil },
		}
		doc, err := New(fetcher, Config{Sections: sections, General: "geral", Meta: meta}).Build(context.Background())
		require.NoError(t, err)

		data, err := json.Marshal(doc)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"items":[]`)
		assert.Contains(t, string(data), `"esportes":[]`)
		assert.NotContains(t, string(data), "null")
	})

	t.Run("no general section configured", func(t *testing.T) {
		fetcher := &mocks.FetcherMock{
			FetchFunc: func(ctx context.Context, src domain.Source, section string) []domain.FeedItem {
				return []domain.FeedItem{item("https://"+src.Name, 0)}
			},
		}
		doc, err := New(fetcher, Config{Sections: sections, General: "manchetes"}).Build(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, doc.Items)
		assert.Empty(t, doc.Items)
		assert.Len(t, doc.Categories, 3)
	})

	t.Run("panic becomes a generic error", func(t *testing.T) {
		fetcher := &mocks.FetcherMock{
			FetchFunc: func(ctx context.Context, src domain.Source, section string) []domain.FeedItem {
				if section == "esportes" {
					var m map[string]int
					m["x"] = 1 // nil map write
				}
				return nil
			},
		}
		doc, err := New(fetcher, Config{Sections: sections, General: "geral"}).Build(context.Background())
		require.Error(t, err)
		assert.Nil(t, doc)
		assert.Contains(t, err.Error(), "assemble feed")
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		fetcher := &mocks.FetcherMock{
			FetchFunc: func(ctx context.Context, src domain.Source, section string) []domain.FeedItem {
				cancel() // every source fails once the caller is gone
				return nil
			},
		}
		doc, err := New(fetcher, Config{Sections: sections, General: "geral", Meta: meta}).Build(ctx)
		require.Error(t, err)
		assert.Nil(t, doc, "empty document is not returned")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("no sections", func(t *testing.T) {
		doc, err := New(&mocks.FetcherMock{}, Config{General: "geral", Meta: meta}).Build(context.Background())
		require.NoError(t, err)
		assert.Empty(t, doc.Items)
		assert.Empty(t, doc.Categories)
	})
}
