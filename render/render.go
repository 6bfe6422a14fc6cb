// Package render turns engine buffers into images.
package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"

	julia "github.com/marben/juliaset"
)

// Palette colors one grid point from its metric and liveness.
type Palette func(metric float64, alive bool) gg.RGBA

// faultColor marks points whose point function failed.
var faultColor = gg.RGB(0.5, 0.5, 0.5)

// Smooth cycles the hue with the smooth escape count and paints bounded points black.
func Smooth() Palette {
	return func(metric float64, alive bool) gg.RGBA {
		switch {
		case alive:
			return gg.Black
		case metric < 0:
			return faultColor
		}
		return gg.HSL(math.Mod(metric*7.2, 360), 1, 0.5)
	}
}

// Grayscale maps metric/iterCap to lightness.
func Grayscale(iterCap int64) Palette {
	return func(metric float64, alive bool) gg.RGBA {
		switch {
		case alive:
			return gg.Black
		case metric < 0:
			return faultColor
		}
		l := min(1, metric/float64(iterCap))
		return gg.RGB(l, l, l)
	}
}

// Image draws a row-major result/liveness grid.
func Image(width, height int, result []float64, alive []bool, p Palette) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("image size %dx%d must be positive", width, height)
	}
	if len(result) != width*height || len(alive) != width*height {
		return nil, fmt.Errorf("buffers of %d/%d points do not match %dx%d grid", len(result), len(alive), width, height)
	}

	pm := gg.NewPixmap(width, height)
	for i, m := range result {
		pm.SetPixel(i%width, i/width, p(m, alive[i]))
	}
	return pm.ToImage(), nil
}

// FromEngine draws the engine's current buffers. During a run the image shows the
// points finished so far.
func FromEngine(e *julia.Engine, p Palette) (*image.RGBA, error) {
	g := e.Geometry()
	return Image(g.Width, g.Height, e.Result(), e.IsAlive(), p)
}

// Thumbnail scales src down so its longer side is at most maxSide pixels.
// Images already small enough are returned unchanged.
func Thumbnail(src image.Image, maxSide int) image.Image {
	b := src.Bounds()
	if maxSide <= 0 || (b.Dx() <= maxSide && b.Dy() <= maxSide) {
		return src
	}
	w, h := maxSide, maxSide
	if b.Dx() > b.Dy() {
		h = max(1, b.Dy()*maxSide/b.Dx())
	} else {
		w = max(1, b.Dx()*maxSide/b.Dy())
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("png.Encode: %w", err)
	}
	return nil
}
