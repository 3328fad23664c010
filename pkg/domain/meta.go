package domain

import "time"

// Meta holds the top-level document metadata
type Meta struct {
	Title       string `yaml:"title" json:"title" jsonschema:"default=Portal de Notícias Global,description=Document title"`
	Description string `yaml:"description" json:"description" jsonschema:"default=Agregador de Notícias Multi-fontes,description=Document description"`
	Link        string `yaml:"link" json:"link" jsonschema:"default=/,description=Document link"`
}

// NewDocument makes an empty document stamped with the given build time
func NewDocument(meta Meta, built time.Time) *Document {
	return &Document{
		Title:         meta.Title,
		Description:   meta.Description,
		Link:          meta.Link,
		Items:         []FeedItem{},
		Categories:    map[string][]FeedItem{},
		LastBuildDate: built.UTC(),
	}
}
