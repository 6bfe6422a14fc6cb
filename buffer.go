package julia

import (
	"math"
	"sync/atomic"
)

// buffers holds the result and liveness arenas of a grid.
//
// Workers only ever write the indices of their own partition. Slots are atomics so
// a renderer may take a partial snapshot while a run is still writing.
type buffers struct {
	metric []atomic.Uint64
	alive  []atomic.Bool
}

func newBuffers(length int) *buffers {
	b := &buffers{
		metric: make([]atomic.Uint64, length),
		alive:  make([]atomic.Bool, length),
	}
	b.reset()
	return b
}

func (b *buffers) len() int {
	return len(b.metric)
}

// reset marks every point alive with a zero metric.
func (b *buffers) reset() {
	for i := range b.metric {
		b.metric[i].Store(0)
		b.alive[i].Store(true)
	}
}

func (b *buffers) set(i int, metric float64, alive bool) {
	b.metric[i].Store(math.Float64bits(metric))
	b.alive[i].Store(alive)
}

func (b *buffers) results() []float64 {
	out := make([]float64, len(b.metric))
	for i := range b.metric {
		out[i] = math.Float64frombits(b.metric[i].Load())
	}
	return out
}

func (b *buffers) liveness() []bool {
	out := make([]bool, len(b.alive))
	for i := range b.alive {
		out[i] = b.alive[i].Load()
	}
	return out
}
