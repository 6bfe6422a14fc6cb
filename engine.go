package julia

import (
	"context"
	"fmt"
	"sync"
)

// State is the lifecycle state of an Engine.
type State int

const (
	Configured State = iota
	Running
	Completed
)

func (s State) String() string {
	switch s {
	case Configured:
		return "configured"
	case Running:
		return "running"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// executor runs the workers of a run.
type executor interface {
	workers() int
	setWorkers(n int) (executor, error)
	// launch spawns the workers and returns without waiting for them.
	launch(r *run)
}

// Engine owns the grid, the view transform, the iteration parameters and the
// result buffers, and drives runs of a PointFunc over the grid.
//
// Configuration is only accepted while no run is active. Start returns at once;
// progress arrives through subscribed Listeners.
type Engine struct {
	mu          sync.Mutex
	fn          PointFunc
	exec        executor
	state       State
	geom        Geometry
	iterations  int64
	threshold   float64
	reportEvery int
	bufs        *buffers
	repopulate  bool
	runs        uint64
	current     *run

	lmu       sync.RWMutex
	listeners []*subscription
}

type subscription struct {
	l Listener
}

func newEngine(fn PointFunc, exec executor, o options) (*Engine, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil point function", ErrInvalidConfig)
	}
	geom, err := NewGeometry(o.width, o.height, o.scale, o.centerX, o.centerY)
	if err != nil {
		return nil, err
	}
	if err := ValidateIterations(o.iterations); err != nil {
		return nil, err
	}
	if err := ValidateThreshold(o.threshold); err != nil {
		return nil, err
	}
	if err := validateReportEvery(o.reportEvery); err != nil {
		return nil, err
	}

	e := &Engine{
		fn:          fn,
		exec:        exec,
		geom:        geom,
		iterations:  o.iterations,
		threshold:   o.threshold,
		reportEvery: o.reportEvery,
		bufs:        newBuffers(geom.Length),
	}
	for _, l := range o.listeners {
		e.Subscribe(l)
	}
	e.emitResized(geom)
	return e, nil
}

// Subscribe adds l to the listeners and returns a function removing it again.
func (e *Engine) Subscribe(l Listener) (unsubscribe func()) {
	s := &subscription{l: l}
	e.lmu.Lock()
	e.listeners = append(e.listeners, s)
	e.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.lmu.Lock()
			defer e.lmu.Unlock()
			for i, other := range e.listeners {
				if other == s {
					e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// SetGrid resizes the grid.
func (e *Engine) SetGrid(width, height int) error {
	return e.reshape("set grid", func(g Geometry) (Geometry, error) { return g.withGrid(width, height) })
}

// SetScale changes the plane half-extent covered by the shorter grid side.
func (e *Engine) SetScale(scale float64) error {
	return e.reshape("set scale", func(g Geometry) (Geometry, error) { return g.withScale(scale) })
}

// SetCenter moves the plane point shown at the grid center.
func (e *Engine) SetCenter(x, y float64) error {
	return e.reshape("set center", func(g Geometry) (Geometry, error) { return g.withCenter(x, y) })
}

// reshape replaces the geometry, arms buffer repopulation and emits Resized.
func (e *Engine) reshape(op string, next func(Geometry) (Geometry, error)) error {
	e.mu.Lock()
	if e.state == Running {
		e.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrRunning)
	}
	geom, err := next(e.geom)
	if err != nil {
		e.mu.Unlock()
		return fmt.Errorf("%s: %w", op, err)
	}
	e.geom = geom
	e.repopulate = true
	e.mu.Unlock()

	e.emitResized(geom)
	return nil
}

// SetFunc swaps the point function used by the next run.
func (e *Engine) SetFunc(fn PointFunc) error {
	return e.configure("set func", func() error {
		if fn == nil {
			return fmt.Errorf("%w: nil point function", ErrInvalidConfig)
		}
		e.fn = fn
		return nil
	})
}

// SetIterations sets the per-point iteration cap.
func (e *Engine) SetIterations(n int64) error {
	return e.configure("set iterations", func() error {
		if err := ValidateIterations(n); err != nil {
			return err
		}
		e.iterations = n
		return nil
	})
}

// SetThreshold sets the escape magnitude.
func (e *Engine) SetThreshold(t float64) error {
	return e.configure("set threshold", func() error {
		if err := ValidateThreshold(t); err != nil {
			return err
		}
		e.threshold = t
		return nil
	})
}

// SetThreadCount changes the number of workers used by the next run.
// Single-threaded engines only accept 1.
func (e *Engine) SetThreadCount(n int) error {
	return e.configure("set thread count", func() error {
		if err := validateThreads(n); err != nil {
			return err
		}
		exec, err := e.exec.setWorkers(n)
		if err != nil {
			return err
		}
		e.exec = exec
		return nil
	})
}

func (e *Engine) configure(op string, apply func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Running {
		return fmt.Errorf("%s: %w", op, ErrRunning)
	}
	if err := apply(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Start begins a run over the whole grid and returns without waiting for it.
// Cancelling ctx stops the workers at their next progress report; the run then
// completes with the context's error.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.state == Running {
		e.mu.Unlock()
		return fmt.Errorf("start: %w", ErrRunning)
	}
	e.repopulateLocked()
	e.runs++
	r := newRun(ctx, e, e.runs, e.exec.workers())
	e.current = r
	e.state = Running
	exec := e.exec
	e.mu.Unlock()

	Logger().Debug("julia: run started",
		"run", r.id, "width", r.geom.Width, "height", r.geom.Height,
		"workers", r.live, "iterations", r.iterations)

	e.emitStarted(StartedEvent{Run: r.id, Workers: r.live})
	exec.launch(r)
	return nil
}

// Wait blocks until the current run completes or ctx is done.
// It returns the run's error, or nil if no run was ever started.
func (e *Engine) Wait(ctx context.Context) error {
	e.mu.Lock()
	r := e.current
	e.mu.Unlock()
	if r == nil {
		return nil
	}
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// repopulateLocked reallocates the buffers after a geometry change. e.mu must be held.
func (e *Engine) repopulateLocked() {
	if !e.repopulate {
		return
	}
	if e.bufs.len() == e.geom.Length {
		e.bufs.reset()
	} else {
		e.bufs = newBuffers(e.geom.Length)
	}
	e.repopulate = false
}

// finish moves the engine out of Running once the last worker of r is done.
func (e *Engine) finish(r *run) {
	e.mu.Lock()
	if e.current == r {
		e.state = Completed
	}
	e.mu.Unlock()
}

// IsRunning reports whether a run has workers still executing.
func (e *Engine) IsRunning() bool {
	return e.State() == Running
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Geometry returns the current pixel-to-plane transform.
func (e *Engine) Geometry() Geometry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.geom
}

// Length returns width*height of the current grid.
func (e *Engine) Length() int {
	return e.Geometry().Length
}

func (e *Engine) Iterations() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.iterations
}

func (e *Engine) Threshold() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.threshold
}

// Run returns the id of the latest run, or 0 if none was started.
func (e *Engine) Run() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runs
}

// Workers returns the number of workers a run uses.
func (e *Engine) Workers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exec.workers()
}

// Progress returns the points finished by the latest run and its grid length.
func (e *Engine) Progress() (current, length int) {
	e.mu.Lock()
	r := e.current
	e.mu.Unlock()
	if r == nil {
		return 0, e.Length()
	}
	return int(r.finished.Load()), r.geom.Length
}

// Result returns a copy of the result buffer in row-major order.
// During a run the copy is partial; it is complete once Completed was emitted.
func (e *Engine) Result() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Running {
		e.repopulateLocked()
	}
	return e.bufs.results()
}

// IsAlive returns a copy of the liveness buffer in row-major order.
func (e *Engine) IsAlive() []bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Running {
		e.repopulateLocked()
	}
	return e.bufs.liveness()
}

func (e *Engine) subscribers() []Listener {
	e.lmu.RLock()
	defer e.lmu.RUnlock()
	out := make([]Listener, len(e.listeners))
	for i, s := range e.listeners {
		out[i] = s.l
	}
	return out
}

func (e *Engine) emitResized(g Geometry) {
	ev := ResizedEvent{Width: g.Width, Height: g.Height, Length: g.Length}
	for _, l := range e.subscribers() {
		l.Resized(ev)
	}
}

func (e *Engine) emitStarted(ev StartedEvent) {
	for _, l := range e.subscribers() {
		l.Started(ev)
	}
}

func (e *Engine) emitIterated(ev IteratedEvent) {
	for _, l := range e.subscribers() {
		l.Iterated(ev)
	}
}

func (e *Engine) emitCompleted(ev CompletedEvent) {
	for _, l := range e.subscribers() {
		l.Completed(ev)
	}
}

func (e *Engine) emitFault(f PointFault) {
	for _, l := range e.subscribers() {
		if fl, ok := l.(FaultListener); ok {
			fl.PointFault(f)
		}
	}
}
