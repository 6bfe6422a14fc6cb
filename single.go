package julia

import "fmt"

// NewSingleThreaded returns an engine that runs the whole grid on one goroutine,
// in index order.
func NewSingleThreaded(fn PointFunc, opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newEngine(fn, singleExecutor{}, o)
}

type singleExecutor struct{}

func (singleExecutor) workers() int { return 1 }

func (s singleExecutor) setWorkers(n int) (executor, error) {
	if n != 1 {
		return nil, fmt.Errorf("%w: single-threaded engine cannot use %d workers", ErrInvalidConfig, n)
	}
	return s, nil
}

func (singleExecutor) launch(r *run) {
	go r.work(Whole(r.geom.Length))
}
