package domain

import "time"

// Source describes one configured feed: where to fetch it and how to label its items
type Source struct {
	URL  string `yaml:"url" json:"url" jsonschema:"required,description=Feed URL"`
	Name string `yaml:"name" json:"name" jsonschema:"description=Human readable source label"`
}

// Document is the assembled output served to the presentation layer
type Document struct {
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Link          string                `json:"link"`
	Items         []FeedItem            `json:"items"`
	Categories    map[string][]FeedItem `json:"categories"`
	LastBuildDate time.Time             `json:"lastBuildDate"`
}

// Section returns items for the given section key, the general section included
func (d *Document) Section(key, general string) ([]FeedItem, bool) {
	if key == general {
		return d.Items, true
	}
	items, ok := d.Categories[key]
	return items, ok
}
