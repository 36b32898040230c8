// Package prefetch builds the batches of a pass concurrently while handing
// them to the consumer in order, so that batch assembly overlaps with
// whatever the consumer does with the previous batch.
package prefetch

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/Noofbiz/ssmdata/datasets"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// Source is anything that can build batch i of a pass without side effects.
// datasets.BatchIterator implements it.
type Source interface {
	NumBatches() int
	Batch(i int) (*datasets.Batch, error)
}

var _ Source = (*datasets.BatchIterator)(nil)

// Each calls fn with every batch of src, in order, from a single goroutine.
// Up to workers batches are built ahead of fn. If workers <= 0,
// runtime.NumCPU() is used.
//
// Each returns the first error from src or fn, or the context error if ctx
// is cancelled first. fn is not called after an error.
func Each(ctx context.Context, src Source, workers int, fn func(i int, b *datasets.Batch) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n := src.NumBatches()
	if n == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}

	// slots[i] receives batch i; buffered so a builder never waits on fn.
	slots := make([]chan *datasets.Batch, n)
	for i := range slots {
		slots[i] = make(chan *datasets.Batch, 1)
	}
	// ahead bounds the batches built but not yet consumed.
	ahead := make(chan struct{}, workers)

	var built int64
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for i := range n {
			if err := ctx.Err(); err != nil {
				return err
			}
			select {
			case ahead <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			g.Go(func() error {
				b, err := src.Batch(i)
				if err != nil {
					return err
				}
				atomic.AddInt64(&built, 1)
				slots[i] <- b
				return nil
			})
		}
		return nil
	})

	g.Go(func() error {
		for i := range n {
			if err := ctx.Err(); err != nil {
				return err
			}
			select {
			case b := <-slots[i]:
				<-ahead
				if err := fn(i, b); err != nil {
					return err
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	err := g.Wait()
	klog.V(2).Infof("prefetch: built %d/%d batches with %d workers (err=%v)", atomic.LoadInt64(&built), n, workers, err)
	return err
}
