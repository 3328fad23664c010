package cache

import (
	"context"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
)

// Refresher rebuilds the cached document
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Warmer refreshes the cache periodically so requests rarely wait for a rebuild
type Warmer struct {
	refresher Refresher
	interval  time.Duration
	wg        sync.WaitGroup
	cancel    context.CancelFunc
}

// NewWarmer makes a warmer, interval defaults to two minutes
func NewWarmer(refresher Refresher, interval time.Duration) *Warmer {
	if interval <= 0 {
		interval = 2 * time.Minute
	}
	return &Warmer{refresher: refresher, interval: interval}
}

// Start begins periodic refreshes, the first one runs immediately
func (w *Warmer) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.worker(ctx)
	lgr.Printf("[INFO] cache warmer started with interval %v", w.interval)
}

// Stop gracefully stops the warmer
func (w *Warmer) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	lgr.Printf("[INFO] cache warmer stopped")
}

func (w *Warmer) worker(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *Warmer) refresh(ctx context.Context) {
	st := time.Now()
	if err := w.refresher.Refresh(ctx); err != nil {
		if ctx.Err() == nil {
			lgr.Printf("[WARN] failed to warm cache: %v", err)
		}
		return
	}
	lgr.Printf("[DEBUG] cache warmed in %v", time.Since(st))
}
