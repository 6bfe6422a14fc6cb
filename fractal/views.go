package fractal

import (
	"fmt"
	"slices"
	"strings"
)

// View is a focal point and zoom on the complex plane.
type View struct {
	CenterX, CenterY float64
	// Scale is the plane half-extent of the shorter grid side.
	Scale float64
}

// Region is a rectangle on the complex plane.
type Region struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// View centers on the region and zooms so the region's shorter side fills the grid's shorter side.
func (r Region) View() View {
	return View{
		CenterX: (r.Xmin + r.Xmax) / 2,
		CenterY: (r.Ymin + r.Ymax) / 2,
		Scale:   min(r.Xmax-r.Xmin, r.Ymax-r.Ymin) / 2,
	}
}

// Julia constants with well known shapes.
const (
	Dendrite     complex128 = 0 + 1i
	DouadyRabbit complex128 = -0.123 + 0.745i
	SanMarco     complex128 = -0.75 + 0i
	SiegelDisk   complex128 = -0.391 - 0.587i
	Dragon       complex128 = -0.8 + 0.156i
)

// Classic regions / landmarks in the Mandelbrot set
var (
	// Seahorse Valley – dense filaments and repeating “seahorse” curls
	SeahorseValley = Region{Xmin: -0.8, Xmax: -0.7, Ymin: 0.05, Ymax: 0.15}

	// Elephant Valley – large bulb with trunk-like tendrils
	ElephantValley = Region{Xmin: -1.85, Xmax: -1.75, Ymin: -0.10, Ymax: -0.02}

	// Spiral Minibrot – small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = Region{Xmin: -0.7435, Xmax: -0.7420, Ymin: 0.1310, Ymax: 0.1325}

	// Triple Spiral – threefold symmetric spiral structure
	TripleSpiral = Region{Xmin: -0.7480, Xmax: -0.7450, Ymin: 0.0950, Ymax: 0.0980}

	// Valley of the Dragon – deep, highly detailed spiral filaments
	ValleyOfTheDragon = Region{Xmin: -0.7400, Xmax: -0.7350, Ymin: 0.1800, Ymax: 0.1850}

	// Minibrot in a Mini-Spiral – self-similar Mandelbrot copy inside a spiral arm
	MinibrotInMiniSpiral = Region{Xmin: -1.7390, Xmax: -1.7375, Ymin: -0.0235, Ymax: -0.0220}
)

// Preset is a named starting point for an engine.
type Preset struct {
	Fractal string
	C       complex128
	View    View
}

// Full is the unzoomed view of a whole Julia set.
var Full = View{Scale: 1.5}

var presets = map[string]Preset{
	"dendrite":                {Fractal: "julia", C: Dendrite, View: Full},
	"rabbit":                  {Fractal: "julia", C: DouadyRabbit, View: Full},
	"san-marco":               {Fractal: "julia", C: SanMarco, View: Full},
	"siegel-disk":             {Fractal: "julia", C: SiegelDisk, View: Full},
	"dragon":                  {Fractal: "julia", C: Dragon, View: Full},
	"mandelbrot":              {Fractal: "mandelbrot", View: View{CenterX: -0.5, Scale: 1.25}},
	"seahorse-valley":         {Fractal: "mandelbrot", View: SeahorseValley.View()},
	"elephant-valley":         {Fractal: "mandelbrot", View: ElephantValley.View()},
	"spiral-minibrot":         {Fractal: "mandelbrot", View: SpiralMinibrot.View()},
	"triple-spiral":           {Fractal: "mandelbrot", View: TripleSpiral.View()},
	"valley-of-the-dragon":    {Fractal: "mandelbrot", View: ValleyOfTheDragon.View()},
	"minibrot-in-mini-spiral": {Fractal: "mandelbrot", View: MinibrotInMiniSpiral.View()},
}

// Lookup returns the preset registered under name.
func Lookup(name string) (Preset, error) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Names lists the preset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
