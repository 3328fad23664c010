// Package aggregator merges items of configured sources into sections and assembles the feed document.
package aggregator

import (
	"context"

	"github.com/umputun/newsportal/pkg/domain"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher

// DefaultMaxItems is the section size limit used when none configured
const DefaultMaxItems = 20

// Fetcher retrieves items of a single source, failures result in no items
type Fetcher interface {
	Fetch(ctx context.Context, src domain.Source, section string) []domain.FeedItem
}

// Config defines sections and document settings
type Config struct {
	Sections map[string][]domain.Source // section key to its sources
	General  string                     // key of the section published as document items
	MaxItems int                        // per-section cap
	Meta     domain.Meta
}

// Aggregator fetches sources of a section concurrently and merges results
type Aggregator struct {
	fetcher Fetcher
	cfg     Config
}

// New makes an aggregator, zero MaxItems means DefaultMaxItems
func New(fetcher Fetcher, cfg Config) *Aggregator {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = DefaultMaxItems
	}
	if cfg.Sections == nil {
		cfg.Sections = map[string][]domain.Source{}
	}
	return &Aggregator{fetcher: fetcher, cfg: cfg}
}

// Sections returns configured section keys mapped to their sources
func (a *Aggregator) Sections() map[string][]domain.Source {
	return a.cfg.Sections
}
