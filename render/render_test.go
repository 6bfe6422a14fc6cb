package render

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"math"
	"testing"
	"time"

	julia "github.com/marben/juliaset"
)

func TestImage(t *testing.T) {
	result := []float64{0, 10, julia.FaultMetric, 5}
	alive := []bool{true, false, false, false}

	img, err := Image(2, 2, result, alive, Grayscale(10))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Fatalf("bounds = %v, want 2x2", b)
	}

	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, color.RGBA{0, 0, 0, 255}},
		{1, 0, color.RGBA{255, 255, 255, 255}},
		{0, 1, color.RGBA{127, 127, 127, 255}},
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestImage_Mismatch(t *testing.T) {
	if _, err := Image(2, 2, make([]float64, 3), make([]bool, 4), Smooth()); err == nil {
		t.Error("short result buffer accepted")
	}
	if _, err := Image(0, 2, nil, nil, Smooth()); err == nil {
		t.Error("zero width accepted")
	}
}

func TestSmooth(t *testing.T) {
	p := Smooth()
	if c := p(3, true); c.R != 0 || c.G != 0 || c.B != 0 {
		t.Errorf("alive point = %+v, want black", c)
	}
	if c := p(3, false); c.A != 1 || (c.R == 0 && c.G == 0 && c.B == 0) {
		t.Errorf("escaped point = %+v, want an opaque hue", c)
	}
}

func TestThumbnail(t *testing.T) {
	img, err := Image(40, 10, make([]float64, 400), make([]bool, 400), Smooth())
	if err != nil {
		t.Fatal(err)
	}
	th := Thumbnail(img, 20)
	if b := th.Bounds(); b.Dx() != 20 || b.Dy() != 5 {
		t.Errorf("thumbnail bounds = %v, want 20x5", b)
	}
	if Thumbnail(img, 100) != img {
		t.Error("small image was rescaled")
	}
}

func TestFromEngine_EncodePNG(t *testing.T) {
	fn := julia.PointFuncFunc(func(x, y float64, iterCap int64, thresh float64) (float64, bool, error) {
		return 4, x > 0, nil
	})
	e, err := julia.NewMultiThreaded(fn, julia.WithGrid(8, 4), julia.WithThreadCount(2), julia.WithIterations(8))
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	img, err := FromEngine(e, Grayscale(8))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := decoded.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Errorf("decoded bounds = %v, want 8x4", b)
	}
}

func TestSummarize(t *testing.T) {
	result := []float64{10, 0.5, 2.5, julia.FaultMetric, 9.9, 10}
	alive := []bool{true, false, false, false, false, false}

	s := Summarize(result, alive, 10, 5)
	if s.Points != 6 || s.Bounded != 1 || s.Faults != 1 || s.Escaped != 4 {
		t.Fatalf("counts = %+v", s)
	}
	want := []float64{1, 1, 0, 0, 2}
	for i := range want {
		if s.Histogram[i] != want[i] {
			t.Errorf("histogram = %v, want %v", s.Histogram, want)
			break
		}
	}
	if math.Abs(s.MeanEscape-5.725) > 1e-12 {
		t.Errorf("mean escape = %v, want 5.725", s.MeanEscape)
	}

	if empty := Summarize(nil, nil, 10, 0); len(empty.Histogram) != 1 || empty.MeanEscape != 0 {
		t.Errorf("empty summary = %+v", empty)
	}
}
