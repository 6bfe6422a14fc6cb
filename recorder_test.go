package julia_test

import (
	"sync"

	julia "github.com/marben/juliaset"
)

// recorder collects every event an engine emits.
type recorder struct {
	mu sync.Mutex
	events
}

type events struct {
	order     []string
	resized   []julia.ResizedEvent
	started   []julia.StartedEvent
	iterated  []julia.IteratedEvent
	completed []julia.CompletedEvent
	faults    []julia.PointFault
}

func (r *recorder) Resized(e julia.ResizedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, "resized")
	r.resized = append(r.resized, e)
}

func (r *recorder) Started(e julia.StartedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, "started")
	r.started = append(r.started, e)
}

func (r *recorder) Iterated(e julia.IteratedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, "iterated")
	r.iterated = append(r.iterated, e)
}

func (r *recorder) Completed(e julia.CompletedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, "completed")
	r.completed = append(r.completed, e)
}

func (r *recorder) PointFault(f julia.PointFault) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faults = append(r.faults, f)
}

func (r *recorder) snapshot() events {
	r.mu.Lock()
	defer r.mu.Unlock()
	return events{
		order:     append([]string(nil), r.order...),
		resized:   append([]julia.ResizedEvent(nil), r.resized...),
		started:   append([]julia.StartedEvent(nil), r.started...),
		iterated:  append([]julia.IteratedEvent(nil), r.iterated...),
		completed: append([]julia.CompletedEvent(nil), r.completed...),
		faults:    append([]julia.PointFault(nil), r.faults...),
	}
}

// alwaysEscapes escapes on the first step with metric 1.
var alwaysEscapes = julia.PointFuncFunc(func(x, y float64, iterCap int64, thresh float64) (float64, bool, error) {
	return 1, true, nil
})

// quadratic is a plain z² + c Julia recurrence used to compare executors.
func quadratic(cr, ci float64) julia.PointFunc {
	return julia.PointFuncFunc(func(x, y float64, iterCap int64, thresh float64) (float64, bool, error) {
		zr, zi := x, y
		for i := range iterCap {
			zr, zi = zr*zr-zi*zi+cr, 2*zr*zi+ci
			if zr*zr+zi*zi > thresh*thresh {
				return float64(i + 1), true, nil
			}
		}
		return float64(iterCap), false, nil
	})
}
