package julia

import "sync"

// NewMultiThreaded returns an engine that splits the grid across several
// goroutines. The worker count defaults to GOMAXPROCS and can be set with
// WithThreadCount.
//
// Worker id owns the indices i with i % workers == id (see Striped), which keeps
// the load even whatever the grid length.
func NewMultiThreaded(fn PointFunc, opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := validateThreads(o.threads); err != nil {
		return nil, err
	}
	return newEngine(fn, multiExecutor{threads: o.threads}, o)
}

type multiExecutor struct {
	threads int
	// up, if set, is called by each worker goroutine before it reports ready.
	up func(id int)
}

func (m multiExecutor) workers() int { return m.threads }

func (m multiExecutor) setWorkers(n int) (executor, error) {
	return multiExecutor{threads: n, up: m.up}, nil
}

// launch creates every worker before any of them starts iterating. Workers park
// on a shared gate that opens once all of them are up, so no partition gets a
// head start.
func (m multiExecutor) launch(r *run) {
	gate := make(chan struct{})
	var ready sync.WaitGroup
	ready.Add(m.threads)

	for id := range m.threads {
		p := Striped(id, m.threads, r.geom.Length)
		go func() {
			if m.up != nil {
				m.up(id)
			}
			ready.Done()
			<-gate
			r.work(p)
		}()
	}

	ready.Wait()
	close(gate)
}
