package julia

import (
	"fmt"
	"math"
)

// Geometry maps grid pixels onto the complex plane.
//
// The shorter grid side always spans 2*Scale plane units, so zooming keeps the
// aspect ratio whatever the grid shape. (CenterX, CenterY) lands on the grid center.
type Geometry struct {
	Width, Height int
	Length        int

	Scale            float64
	CenterX, CenterY float64

	// ScalePx is plane units per pixel.
	ScalePx          float64
	OffsetX, OffsetY float64
}

// NewGeometry validates the grid and view parameters and derives the transform.
func NewGeometry(width, height int, scale, centerX, centerY float64) (Geometry, error) {
	if width <= 0 || height <= 0 {
		return Geometry{}, fmt.Errorf("%w: grid %dx%d must be positive", ErrInvalidConfig, width, height)
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		return Geometry{}, fmt.Errorf("%w: scale %v must be positive and finite", ErrInvalidConfig, scale)
	}
	if !isFinite(centerX) || !isFinite(centerY) {
		return Geometry{}, fmt.Errorf("%w: center (%v, %v) must be finite", ErrInvalidConfig, centerX, centerY)
	}

	g := Geometry{
		Width:   width,
		Height:  height,
		Length:  width * height,
		Scale:   scale,
		CenterX: centerX,
		CenterY: centerY,
	}
	g.ScalePx = g.ScalePxFor(scale)
	g.OffsetX = centerX/g.ScalePx - float64(width/2)
	g.OffsetY = centerY/g.ScalePx - float64(height/2)
	return g, nil
}

// ScalePxFor returns the plane units per pixel this grid would use at the given scale.
func (g Geometry) ScalePxFor(scale float64) float64 {
	return scale * 2 / float64(min(g.Width, g.Height))
}

// Plane maps pixel (px, py) to plane coordinates.
func (g Geometry) Plane(px, py int) (x, y float64) {
	return (float64(px) + g.OffsetX) * g.ScalePx, (float64(py) + g.OffsetY) * g.ScalePx
}

// PlaneAt maps a row-major grid index to plane coordinates.
func (g Geometry) PlaneAt(index int) (x, y float64) {
	return g.Plane(index%g.Width, index/g.Width)
}

func (g Geometry) withGrid(width, height int) (Geometry, error) {
	return NewGeometry(width, height, g.Scale, g.CenterX, g.CenterY)
}

func (g Geometry) withScale(scale float64) (Geometry, error) {
	return NewGeometry(g.Width, g.Height, scale, g.CenterX, g.CenterY)
}

func (g Geometry) withCenter(x, y float64) (Geometry, error) {
	return NewGeometry(g.Width, g.Height, g.Scale, x, y)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
