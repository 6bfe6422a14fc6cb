package render

import "math"

// Stats summarizes a finished grid.
type Stats struct {
	Points  int
	Bounded int
	Escaped int
	Faults  int
	// MeanEscape is the mean metric of escaped points.
	MeanEscape float64
	// Histogram counts escaped points by metric in equal bins over [0, iterCap].
	Histogram []float64
}

// Summarize counts bounded, escaped and faulted points and bins the escape metrics.
func Summarize(result []float64, alive []bool, iterCap int64, bins int) Stats {
	s := Stats{Points: len(result), Histogram: make([]float64, max(1, bins))}
	width := float64(max(1, iterCap)) / float64(len(s.Histogram))

	var sum float64
	for i, m := range result {
		switch {
		case i < len(alive) && alive[i]:
			s.Bounded++
		case m < 0:
			s.Faults++
		default:
			s.Escaped++
			sum += m
			b := min(len(s.Histogram)-1, int(math.Floor(m/width)))
			s.Histogram[b]++
		}
	}
	if s.Escaped > 0 {
		s.MeanEscape = sum / float64(s.Escaped)
	}
	return s
}
