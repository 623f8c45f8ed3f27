package bnk

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Progress is a snapshot of a batch operation.
type Progress struct {
	Done  int
	Total int
}

// ProgressFunc observes progress. Calls are serialized and Done never
// decreases.
type ProgressFunc func(Progress)

// progressReporter funnels progress units from any number of producers into
// a single consumer goroutine, which is the only caller of the callback.
type progressReporter struct {
	units    chan struct{}
	finished chan struct{}
	sent     atomic.Int64
	total    int
}

func newProgressReporter(total int, fn ProgressFunc) *progressReporter {
	p := &progressReporter{
		units:    make(chan struct{}, 64),
		finished: make(chan struct{}),
		total:    total,
	}
	go func() {
		defer close(p.finished)
		done := 0
		for range p.units {
			done++
			if fn != nil {
				fn(Progress{Done: done, Total: total})
			}
		}
	}()
	return p
}

// Step reports one unit of work.
func (p *progressReporter) Step() {
	if int(p.sent.Add(1)) > p.total {
		p.sent.Add(-1)
		return
	}
	p.units <- struct{}{}
}

// Complete reports every unit not yet reported. Used on failure paths so
// observers always see the batch finish.
func (p *progressReporter) Complete() {
	for int(p.sent.Load()) < p.total {
		p.Step()
	}
}

// Close stops the consumer and waits until every reported unit has been
// delivered. Step must not be called afterwards.
func (p *progressReporter) Close() {
	close(p.units)
	<-p.finished
}

// runPool calls fn for every index in [0, n) with at most workers calls in
// flight. The first error cancels the remaining work and is returned.
// One progress unit is reported per successful call.
func runPool(ctx context.Context, n, workers int, progress *progressReporter, fn func(ctx context.Context, i int) error) error {
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := checkCanceled(gctx); err != nil {
				return err
			}
			if err := fn(gctx, i); err != nil {
				return err
			}
			progress.Step()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return checkCanceled(ctx)
}
