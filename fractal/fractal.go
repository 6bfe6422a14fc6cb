// Package fractal provides escape-time recurrences that plug into julia engines.
package fractal

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	julia "github.com/marben/juliaset"
)

// Julia iterates z = z² + C starting from the pixel's plane coordinate.
type Julia struct {
	C complex128
}

func (j Julia) Iterate(x, y float64, iterCap int64, thresh float64) (float64, bool, error) {
	z := complex(x, y)
	return escape(iterCap, thresh, func() complex128 {
		z = z*z + j.C
		return z
	})
}

// Mandelbrot iterates z = z² + c with z starting at 0 and c the pixel's plane coordinate.
type Mandelbrot struct{}

func (Mandelbrot) Iterate(x, y float64, iterCap int64, thresh float64) (float64, bool, error) {
	c := complex(x, y)
	var z complex128
	return escape(iterCap, thresh, func() complex128 {
		z = z*z + c
		return z
	})
}

// Multibrot iterates z = z^Power + c. Power 2 is the Mandelbrot set.
type Multibrot struct {
	Power float64
}

func (m Multibrot) Iterate(x, y float64, iterCap int64, thresh float64) (float64, bool, error) {
	if m.Power < 2 || math.IsInf(m.Power, 0) || math.IsNaN(m.Power) {
		return 0, false, fmt.Errorf("multibrot power %v must be finite and at least 2", m.Power)
	}
	c := complex(x, y)
	p := complex(m.Power, 0)
	var z complex128
	return escape(iterCap, thresh, func() complex128 {
		if z == 0 { // 0^p + c
			z = c
			return z
		}
		z = cmplx.Pow(z, p) + c
		return z
	})
}

// escape runs step until |z| exceeds thresh or iterCap steps are spent.
// Escaped points report the smooth iteration count; the rest report iterCap.
func escape(iterCap int64, thresh float64, step func() complex128) (float64, bool, error) {
	limit := thresh * thresh
	for i := range iterCap {
		z := step()
		if real(z)*real(z)+imag(z)*imag(z) > limit {
			return smooth(i, z), true, nil
		}
	}
	return float64(iterCap), false, nil
}

// smooth is the continuous escape count i + 1 - log2(log|z|).
func smooth(i int64, z complex128) float64 {
	n := float64(i + 1)
	lz := math.Log(cmplx.Abs(z))
	if lz <= 0 {
		return n
	}
	return max(0, n-math.Log2(lz))
}

// New returns the recurrence registered under name ("julia", "mandelbrot" or
// "multibrot<N>"). c is the Julia constant and is ignored by the other families.
func New(name string, c complex128) (julia.PointFunc, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch {
	case name == "" || name == "julia":
		return Julia{C: c}, nil
	case name == "mandelbrot":
		return Mandelbrot{}, nil
	case strings.HasPrefix(name, "multibrot"):
		var power float64
		if _, err := fmt.Sscanf(name, "multibrot%g", &power); err != nil {
			return nil, fmt.Errorf("fractal %q: missing power: %w", name, err)
		}
		if power < 2 {
			return nil, fmt.Errorf("fractal %q: power must be at least 2", name)
		}
		return Multibrot{Power: power}, nil
	default:
		return nil, fmt.Errorf("unknown fractal %q", name)
	}
}

var (
	_ julia.PointFunc = Julia{}
	_ julia.PointFunc = Mandelbrot{}
	_ julia.PointFunc = Multibrot{}
)
