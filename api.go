// Package julia computes escape-time fractals over a pixel grid on one or many
// goroutines and reports progress as the grid fills in.
package julia

// PointFunc computes the escape-time metric of a single plane coordinate.
// Iterate runs at most iterCap steps of its recurrence and reports whether the
// orbit's magnitude exceeded thresh before the budget ran out.
// A returned error (or a panic) marks only that point as faulted.
type PointFunc interface {
	Iterate(x, y float64, iterCap int64, thresh float64) (metric float64, escaped bool, err error)
}

// PointFuncFunc adapts a plain function to PointFunc.
type PointFuncFunc func(x, y float64, iterCap int64, thresh float64) (float64, bool, error)

func (f PointFuncFunc) Iterate(x, y float64, iterCap int64, thresh float64) (float64, bool, error) {
	return f(x, y, iterCap, thresh)
}

// Listener receives engine events.
// Resized and Started are delivered on the goroutine that called the setter or Start.
// Iterated and Completed are delivered by worker goroutines, one at a time per run.
//
// The engine leaves the Running state before it delivers a run's Done event and its
// Completed event, so a listener may Start the next run from either of them. Events
// of that next run can then arrive before the previous run's Completed, and from
// another goroutine. Every run-scoped event carries its Run id to tell them apart.
type Listener interface {
	Resized(ResizedEvent)
	Started(StartedEvent)
	Iterated(IteratedEvent)
	Completed(CompletedEvent)
}

// FaultListener can be implemented by a Listener to be told about per-point faults.
type FaultListener interface {
	PointFault(PointFault)
}
