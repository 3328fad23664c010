package domain

import "time"

// FeedItem represents a single normalized news entry taken from one source feed
type FeedItem struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Description string    `json:"description"`
	Published   time.Time `json:"pubDate"`
	Category    string    `json:"category,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Source      string    `json:"source,omitempty"`
	Section     string    `json:"section,omitempty"`
}
