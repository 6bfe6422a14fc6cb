package julia

import "iter"

// Partition is the set of grid indices owned by one worker:
// Start, Start+Stride, Start+2*Stride, ... below Length.
//
// Partitions produced by Striped for the same (workers, length) are disjoint and
// together cover 0..length-1, which is what lets workers write the shared result
// buffers without locking.
type Partition struct {
	ID     int
	Start  int
	Stride int
	Length int
}

// Striped assigns worker id the indices i with i % workers == id.
func Striped(id, workers, length int) Partition {
	return Partition{ID: id, Start: id, Stride: workers, Length: length}
}

// Whole is the single partition covering every index in order.
func Whole(length int) Partition {
	return Partition{Start: 0, Stride: 1, Length: length}
}

// Len returns the number of indices in the partition.
func (p Partition) Len() int {
	if p.Stride <= 0 || p.Start >= p.Length {
		return 0
	}
	return (p.Length-p.Start+p.Stride-1) / p.Stride
}

// Index returns the n-th index of the partition.
func (p Partition) Index(n int) int {
	return p.Start + n*p.Stride
}

// Indices yields the partition's indices in ascending order.
func (p Partition) Indices() iter.Seq[int] {
	return func(yield func(int) bool) {
		n := p.Len()
		for k := range n {
			if !yield(p.Index(k)) {
				return
			}
		}
	}
}
