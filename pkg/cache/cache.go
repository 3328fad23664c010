// Package cache keeps the last assembled document and rebuilds it when it gets old.
// A fresh snapshot is served as is, a stale one is served while a single background
// rebuild runs, an expired or missing one is rebuilt before returning.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/singleflight"

	"github.com/umputun/newsportal/pkg/domain"
)

//go:generate moq -out mocks/builder.go -pkg mocks -skip-ensure -fmt goimports . Builder
//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store

const (
	flightKey           = "document"
	defaultBuildTimeout = time.Minute
)

// Builder assembles a new document
type Builder interface {
	Build(ctx context.Context) (*domain.Document, error)
}

// Store persists the latest snapshot, ok is false if nothing stored yet
type Store interface {
	Load(ctx context.Context) (snap Snapshot, ok bool, err error)
	Save(ctx context.Context, snap Snapshot) error
}

// Snapshot is a built document with its build time
type Snapshot struct {
	Document *domain.Document
	BuiltAt  time.Time
}

// Config defines snapshot lifetime
type Config struct {
	TTL          time.Duration // snapshot is fresh for TTL, zero disables caching
	Stale        time.Duration // after TTL the snapshot is still served for Stale while rebuilding
	BuildTimeout time.Duration // limit for a single rebuild, one minute by default
}

// Cache serves documents from a snapshot store, rebuilding through the builder
type Cache struct {
	builder      Builder
	store        Store
	ttl          time.Duration
	stale        time.Duration
	buildTimeout time.Duration

	group singleflight.Group
	wg    sync.WaitGroup // background refreshes and rebuilds left by gone callers
	now   func() time.Time
}

// New makes a cache, nil store means in-memory one
func New(builder Builder, store Store, cfg Config) *Cache {
	if store == nil {
		store = NewMemoryStore()
	}
	if cfg.Stale < 0 {
		cfg.Stale = 0
	}
	if cfg.BuildTimeout <= 0 {
		cfg.BuildTimeout = defaultBuildTimeout
	}
	return &Cache{builder: builder, store: store, ttl: cfg.TTL, stale: cfg.Stale,
		buildTimeout: cfg.BuildTimeout, now: time.Now}
}

// Document returns the cached document, building a new one when the snapshot is expired
func (c *Cache) Document(ctx context.Context) (*domain.Document, error) {
	if c.ttl <= 0 {
		doc, err := c.builder.Build(ctx)
		if err != nil {
			return nil, fmt.Errorf("build document: %w", err)
		}
		return doc, nil
	}

	snap, ok, err := c.store.Load(ctx)
	if err != nil {
		lgr.Printf("[WARN] failed to load snapshot: %v", err)
		ok = false
	}

	if ok && snap.Document != nil {
		age := c.now().Sub(snap.BuiltAt)
		switch {
		case age < c.ttl:
			return snap.Document, nil
		case age < c.ttl+c.stale:
			lgr.Printf("[DEBUG] snapshot is stale (%v), refreshing in background", age)
			c.refreshAsync(ctx)
			return snap.Document, nil
		}
	}

	return c.rebuild(ctx)
}

// Refresh rebuilds and stores the document regardless of the snapshot age
func (c *Cache) Refresh(ctx context.Context) error {
	_, err := c.rebuild(ctx)
	return err
}

// Wait blocks until background refreshes and detached rebuilds are done
func (c *Cache) Wait() {
	c.wg.Wait()
}

// rebuild collapses concurrent rebuilds into one. The build runs detached from callers,
// a caller whose context is done gets ctx.Err() while the build goes on for the others.
func (c *Cache) rebuild(ctx context.Context) (*domain.Document, error) {
	c.wg.Add(1)
	ch := c.group.DoChan(flightKey, func() (interface{}, error) {
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.buildTimeout)
		defer cancel()
		return c.build(bctx)
	})

	select {
	case res := <-ch:
		c.wg.Done()
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			lgr.Printf("[DEBUG] document rebuild shared")
		}
		return res.Val.(*domain.Document), nil
	case <-ctx.Done():
		go func() {
			defer c.wg.Done()
			<-ch
		}()
		return nil, fmt.Errorf("wait for document: %w", ctx.Err())
	}
}

func (c *Cache) refreshAsync(ctx context.Context) {
	ctx = context.WithoutCancel(ctx) // request end should not abort the rebuild
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if _, err := c.rebuild(ctx); err != nil {
			lgr.Printf("[WARN] background refresh failed: %v", err)
		}
	}()
}

func (c *Cache) build(ctx context.Context) (*domain.Document, error) {
	built := c.now()
	doc, err := c.builder.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build document: %w", err)
	}
	if ctx.Err() != nil {
		// sources cut short by the deadline, the document is served but not kept
		lgr.Printf("[WARN] document build exceeded %v, snapshot not saved", c.buildTimeout)
		return doc, nil
	}
	if err := c.store.Save(ctx, Snapshot{Document: doc, BuiltAt: built}); err != nil {
		lgr.Printf("[WARN] failed to save snapshot: %v", err)
	}
	return doc, nil
}
