package julia

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// run is one pass of the point function over the whole grid.
// Geometry and iteration parameters are copied at Start, so a run never sees
// a later reconfiguration.
type run struct {
	id          uint64
	ctx         context.Context
	engine      *Engine
	fn          PointFunc
	geom        Geometry
	iterations  int64
	threshold   float64
	reportEvery int
	bufs        *buffers

	// finished mirrors current for readers outside the aggregation path.
	finished atomic.Int64

	// mu guards the aggregation state and serializes Iterated, Completed and
	// PointFault delivery.
	mu       sync.Mutex
	current  int
	live     int
	anyAlive bool
	faults   int
	err      error

	done chan struct{}
}

// newRun snapshots the engine configuration. e.mu must be held.
func newRun(ctx context.Context, e *Engine, id uint64, workers int) *run {
	every := e.reportEvery
	if every == 0 {
		every = e.geom.Width
	}
	return &run{
		id:          id,
		ctx:         ctx,
		engine:      e,
		fn:          e.fn,
		geom:        e.geom,
		iterations:  e.iterations,
		threshold:   e.threshold,
		reportEvery: every,
		bufs:        e.bufs,
		live:        workers,
		done:        make(chan struct{}),
	}
}

// batch accumulates the points a worker finished since its last report.
type batch struct {
	points int
	alive  bool
	died   bool
}

// work processes partition p in index order. It always ends with a final
// report, including when the worker panics or the run is cancelled.
func (r *run) work(p Partition) {
	var b batch
	defer func() {
		if v := recover(); v != nil {
			err := fmt.Errorf("%w: worker %d: %v", ErrWorkerFault, p.ID, v)
			Logger().Error("julia: worker failed", "run", r.id, "worker", p.ID, "err", err)
			r.fail(err)
		}
		r.report(b, true)
	}()

	n := p.Len()
	for k := range n {
		if b.points == 0 {
			if err := context.Cause(r.ctx); err != nil {
				r.fail(err)
				return
			}
		}

		r.point(p.ID, p.Index(k), &b)

		if b.points >= r.reportEvery {
			// cleared first so a panicking listener cannot make the deferred report count it again
			full := b
			b = batch{}
			r.report(full, false)
		}
	}
}

func (r *run) point(worker, index int, b *batch) {
	x, y := r.geom.PlaneAt(index)
	metric, escaped, err := r.iterate(x, y)
	if err != nil {
		metric, escaped = FaultMetric, true
		r.fault(PointFault{Run: r.id, Index: index, X: x, Y: y, Worker: worker, Err: err})
	}
	r.bufs.set(index, metric, !escaped)

	b.points++
	if escaped {
		b.died = true
	} else {
		b.alive = true
	}
}

// iterate calls the point function, turning errors and panics into point faults.
func (r *run) iterate(x, y float64) (metric float64, escaped bool, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%w: panic at (%v, %v): %v", ErrPointFault, x, y, v)
		}
	}()
	metric, escaped, err = r.fn.Iterate(x, y, r.iterations, r.threshold)
	if err != nil {
		err = fmt.Errorf("%w at (%v, %v): %w", ErrPointFault, x, y, err)
	}
	return metric, escaped, err
}

func (r *run) fault(f PointFault) {
	Logger().Warn("julia: point fault", "run", f.Run, "index", f.Index, "worker", f.Worker, "err", f.Err)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.faults++
	r.engine.emitFault(f)
}

// fail records the first error that ends the run early.
func (r *run) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err == nil {
		r.err = err
	}
}

// report adds a worker's batch to the aggregate and emits progress. The last
// worker to report as finished closes the run.
func (r *run) report(b batch, finished bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current += b.points
	r.finished.Store(int64(r.current))
	r.anyAlive = r.anyAlive || b.alive
	if finished {
		r.live--
	}
	last := r.live == 0

	if last && r.err == nil && r.current != r.geom.Length {
		r.err = fmt.Errorf("%w: %d of %d points finished", ErrWorkerFault, r.current, r.geom.Length)
	}
	done := last && r.err == nil
	if last {
		r.engine.finish(r)
	}

	if b.points > 0 || done {
		r.engine.emitIterated(IteratedEvent{
			Run:      r.id,
			Width:    r.geom.Width,
			Height:   r.geom.Height,
			Length:   r.geom.Length,
			Current:  r.current,
			Progress: float64(r.current) / float64(r.geom.Length),
			AnyAlive: r.anyAlive,
			AnyDied:  b.died,
			Faults:   r.faults,
			Done:     done,
		})
	}

	if last {
		r.complete()
	}
}

// complete is called once, by the last worker, with r.mu held.
func (r *run) complete() {
	if r.err != nil {
		Logger().Debug("julia: run failed", "run", r.id, "points", r.current, "err", r.err)
	} else {
		Logger().Debug("julia: run completed", "run", r.id, "points", r.current, "faults", r.faults)
	}

	r.engine.emitCompleted(CompletedEvent{Run: r.id, Length: r.geom.Length, Faults: r.faults, Err: r.err})
	close(r.done)
}
