package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"catalogview/internal/model"
	"catalogview/internal/observability"
)

// WorkingSet holds the currently loaded products. A successful Reload
// replaces the whole set; a failed one keeps the previous set.
type WorkingSet struct {
	loader *Loader
	group  singleflight.Group
	cur    atomic.Pointer[[]model.Product]

	mu       sync.RWMutex
	lastErr  error
	loadedAt time.Time
}

func NewWorkingSet(loader *Loader) *WorkingSet {
	return &WorkingSet{loader: loader}
}

// Products returns the current set. Callers must not modify it.
func (w *WorkingSet) Products() []model.Product {
	if p := w.cur.Load(); p != nil {
		return *p
	}
	return nil
}

// LastError is the error of the most recent load, nil after a success.
func (w *WorkingSet) LastError() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastErr
}

// LoadedAt is the time of the last successful load.
func (w *WorkingSet) LoadedAt() time.Time {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.loadedAt
}

// Reload loads the catalog. Callers arriving while a load is in flight share
// its result instead of starting another one.
func (w *WorkingSet) Reload(ctx context.Context) ([]model.Product, error) {
	ch := w.group.DoChan("load", func() (interface{}, error) {
		products, err := w.loader.Load(context.WithoutCancel(ctx))
		w.mu.Lock()
		w.lastErr = err
		if err == nil {
			w.loadedAt = w.loader.clock.Now()
		}
		w.mu.Unlock()
		if err != nil {
			return nil, err
		}
		w.cur.Store(&products)
		observability.WorkingSetSize.Set(float64(len(products)))
		return products, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]model.Product), nil
	}
}
