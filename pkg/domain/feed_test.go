package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument(t *testing.T) {
	built := time.Date(2024, 5, 1, 9, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	doc := NewDocument(Meta{Title: "Portal", Description: "desc", Link: "/"}, built)

	assert.Equal(t, "Portal", doc.Title)
	assert.Equal(t, time.UTC, doc.LastBuildDate.Location())
	assert.True(t, doc.LastBuildDate.Equal(built))

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Portal","description":"desc","link":"/","items":[],"categories":{},
		"lastBuildDate":"2024-05-01T12:00:00Z"}`, string(data))
}

func TestDocument_Section(t *testing.T) {
	doc := NewDocument(Meta{}, time.Now())
	doc.Items = []FeedItem{{Title: "g", Link: "https://g.example.com"}}
	doc.Categories["esportes"] = []FeedItem{{Title: "e", Link: "https://e.example.com"}}

	tests := []struct {
		key   string
		title string
		ok    bool
	}{
		{key: "geral", title: "g", ok: true},
		{key: "esportes", title: "e", ok: true},
		{key: "culinaria", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			items, ok := doc.Section(tt.key, "geral")
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				assert.Empty(t, items)
				return
			}
			require.Len(t, items, 1)
			assert.Equal(t, tt.title, items[0].Title)
		})
	}
}

func TestFeedItem_JSON(t *testing.T) {
	item := FeedItem{Title: "Gol", Link: "https://e.example.com/1", Published: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	data, err := json.Marshal(item)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Gol","link":"https://e.example.com/1","description":"","pubDate":"2024-05-01T10:00:00Z"}`,
		string(data), "optional fields omitted")
}
