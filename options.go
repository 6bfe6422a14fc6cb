package julia

import (
	"fmt"
	"math"
	"runtime"
)

// Option configures an Engine at construction.
//
//	e, err := julia.NewMultiThreaded(fractal.Julia{C: fractal.DouadyRabbit},
//		julia.WithGrid(800, 600),
//		julia.WithIterations(500),
//		julia.WithThreadCount(4),
//	)
type Option func(*options)

type options struct {
	width, height    int
	scale            float64
	centerX, centerY float64
	iterations       int64
	threshold        float64
	threads          int
	reportEvery      int
	listeners        []Listener
}

// defaults: a 1x1 grid at scale 1, one iteration, threshold 10.
func defaultOptions() options {
	return options{
		width:      1,
		height:     1,
		scale:      1,
		iterations: 1,
		threshold:  10,
		threads:    runtime.GOMAXPROCS(0),
	}
}

// WithGrid sets the grid size in pixels.
func WithGrid(width, height int) Option {
	return func(o *options) {
		o.width, o.height = width, height
	}
}

// WithScale sets the plane half-extent covered by the shorter grid side.
func WithScale(scale float64) Option {
	return func(o *options) {
		o.scale = scale
	}
}

// WithCenter sets the plane point shown at the grid center.
func WithCenter(x, y float64) Option {
	return func(o *options) {
		o.centerX, o.centerY = x, y
	}
}

// WithIterations sets the per-point iteration cap.
func WithIterations(n int64) Option {
	return func(o *options) {
		o.iterations = n
	}
}

// WithThreshold sets the escape magnitude.
func WithThreshold(t float64) Option {
	return func(o *options) {
		o.threshold = t
	}
}

// WithThreadCount sets the worker count of a multi-threaded engine.
// It is ignored by single-threaded engines.
func WithThreadCount(n int) Option {
	return func(o *options) {
		o.threads = n
	}
}

// WithReportEvery sets how many points a worker finishes between Iterated events.
// Zero (the default) reports once per grid row.
func WithReportEvery(n int) Option {
	return func(o *options) {
		o.reportEvery = n
	}
}

// WithListener subscribes l before the engine emits its first event.
func WithListener(l Listener) Option {
	return func(o *options) {
		o.listeners = append(o.listeners, l)
	}
}

// ValidateIterations reports whether n is usable as an iteration cap.
func ValidateIterations(n int64) error {
	if n <= 0 {
		return fmt.Errorf("%w: iteration cap %d must be positive", ErrInvalidConfig, n)
	}
	return nil
}

// ValidateThreshold reports whether t is usable as an escape threshold.
func ValidateThreshold(t float64) error {
	if !(t > 0) || math.IsInf(t, 0) {
		return fmt.Errorf("%w: threshold %v must be positive and finite", ErrInvalidConfig, t)
	}
	return nil
}

func validateThreads(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: thread count %d must be positive", ErrInvalidConfig, n)
	}
	return nil
}

func validateReportEvery(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: report interval %d must not be negative", ErrInvalidConfig, n)
	}
	return nil
}
