package aggregator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/newsportal/pkg/domain"
)

// Build aggregates all sections concurrently and assembles the document.
// The general section goes to Items, others to Categories keyed by section.
func (a *Aggregator) Build(ctx context.Context) (*domain.Document, error) {
	st := time.Now()
	keys := make([]string, 0, len(a.cfg.Sections))
	for k := range a.cfg.Sections {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	results := make([][]domain.FeedItem, len(keys))
	var g errgroup.Group
	for i, key := range keys {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("section %s: panic: %v", key, r)
				}
			}()
			results[i], err = a.Section(ctx, key)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		lgr.Printf("[ERROR] failed to build feed: %v", err)
		return nil, fmt.Errorf("assemble feed: %w", err)
	}
	// sources of a canceled build failed for the caller's reason, not their own
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("assemble feed: %w", err)
	}

	doc := domain.NewDocument(a.cfg.Meta, time.Now())
	total := 0
	for i, key := range keys {
		total += len(results[i])
		if key == a.cfg.General {
			doc.Items = results[i]
			continue
		}
		doc.Categories[key] = results[i]
	}
	lgr.Printf("[INFO] feed built, %d sections, %d items in %v", len(keys), total, time.Since(st))
	return doc, nil
}
