package aggregator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/newsportal/pkg/domain"
)

// Section fetches all sources of the section concurrently and returns deduplicated items,
// newest first, capped to MaxItems. Unknown section gives an empty list.
// Source failures never surface, an error is returned only if a source fetch panicked.
func (a *Aggregator) Section(ctx context.Context, key string) ([]domain.FeedItem, error) {
	sources := a.cfg.Sections[key]
	if len(sources) == 0 {
		return []domain.FeedItem{}, nil
	}

	// each source writes to its own slot, order of sources is kept on merge
	results := make([][]domain.FeedItem, len(sources))
	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("fetch %s: panic: %v", src.URL, r)
				}
			}()
			results[i] = a.fetcher.Fetch(ctx, src, key)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("aggregate section %s: %w", key, err)
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	all := make([]domain.FeedItem, 0, total)
	for _, r := range results {
		all = append(all, r...)
	}

	items := SortByDate(Dedup(all))
	if len(items) > a.cfg.MaxItems {
		items = items[:a.cfg.MaxItems]
	}
	lgr.Printf("[DEBUG] section %s: %d items from %d sources, %d kept", key, total, len(sources), len(items))
	return items, nil
}

// Dedup drops items with a link already seen, the first occurrence wins and order is kept
func Dedup(items []domain.FeedItem) []domain.FeedItem {
	seen := make(map[string]struct{}, len(items))
	res := make([]domain.FeedItem, 0, len(items))
	for _, item := range items {
		k := DedupKey(item.Link)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		res = append(res, item)
	}
	return res
}

// DedupKey normalizes a link for duplicate detection, scheme and a single trailing slash are ignored
func DedupKey(link string) string {
	k := strings.TrimSpace(link)
	for _, prefix := range []string{"https://", "http://"} {
		if len(k) >= len(prefix) && strings.EqualFold(k[:len(prefix)], prefix) {
			k = k[len(prefix):]
			break
		}
	}
	return strings.TrimSuffix(k, "/")
}

// SortByDate orders items newest first in place, equal dates keep their relative order
func SortByDate(items []domain.FeedItem) []domain.FeedItem {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Published.After(items[j].Published)
	})
	return items
}
