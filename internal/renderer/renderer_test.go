package renderer

import (
	"image"
	"math"
	"path/filepath"
	"testing"

	"github.com/gogpu/gg"

	"github.com/ivlev/scene2video/internal/scene"
	"github.com/ivlev/scene2video/internal/system"
)

func TestGradientAt(t *testing.T) {
	red := gg.RGBA{R: 1, A: 1}
	blue := gg.RGBA{B: 1, A: 1}
	stops := []gg.RGBA{red, blue}

	tests := []struct {
		t    float64
		want gg.RGBA
	}{
		{0, red},
		{1, blue},
		{0.5, gg.RGBA{R: 0.5, B: 0.5, A: 1}},
		{2, blue},
	}
	for _, tt := range tests {
		got := gradientAt(stops, tt.t)
		if math.Abs(got.R-tt.want.R) > 1e-9 || math.Abs(got.B-tt.want.B) > 1e-9 {
			t.Errorf("gradientAt(%.1f) = %+v, expected %+v", tt.t, got, tt.want)
		}
	}
}

func TestPaint(t *testing.T) {
	white := gg.RGBA{R: 1, G: 1, B: 1, A: 1}
	yellow := gg.RGBA{R: 1, G: 1, A: 1}

	got := paint(white, yellow, 1, 0.5)
	if got.B != 0 || got.A != 0.5 {
		t.Errorf("Expected fully tinted half-transparent yellow, got %+v", got)
	}
	if got := paint(white, yellow, 0, 1); got != white {
		t.Errorf("Expected untouched colour, got %+v", got)
	}
}

func TestFontMeasurer(t *testing.T) {
	m, err := NewFontMeasurer()
	if err != nil {
		t.Fatalf("NewFontMeasurer failed: %v", err)
	}
	w1, h1 := m.Measure("Transformer", 24, false)
	w2, h2 := m.Measure("Transformer", 48, false)
	if w1 <= 0 || h1 <= 0 {
		t.Fatalf("Expected positive extent, got %.3fx%.3f", w1, h1)
	}
	if math.Abs(w2-2*w1) > 1e-6 || math.Abs(h2-2*h1) > 1e-6 {
		t.Errorf("Extent should scale with size: %.3fx%.3f vs %.3fx%.3f", w1, h1, w2, h2)
	}
	if wb, _ := m.Measure("Transformer", 24, true); wb <= w1 {
		t.Errorf("Bold should be wider: %.3f <= %.3f", wb, w1)
	}
}

func pixel(img *image.RGBA, x, y int) (r, g, b uint8) {
	i := img.PixOffset(x, y)
	return img.Pix[i], img.Pix[i+1], img.Pix[i+2]
}

func TestCanvasRendersFilledRect(t *testing.T) {
	c, err := NewCanvas(160, 90, gg.RGBA{A: 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	red := gg.RGBA{R: 1, A: 1}
	rect, err := scene.NewRect(2, 2, scene.Filled(red, 4, 1))
	if err != nil {
		t.Fatal(err)
	}
	img, err := c.Render(scene.Frame{Items: []scene.Item{scene.Still(rect)}})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if r, g, b := pixel(img, 80, 45); r < 200 || g > 50 || b > 50 {
		t.Errorf("Expected red at the centre, got %d,%d,%d", r, g, b)
	}
	if r, g, b := pixel(img, 2, 2); r != 0 || g != 0 || b != 0 {
		t.Errorf("Expected background in the corner, got %d,%d,%d", r, g, b)
	}
}

func TestCanvasSkipsHiddenItems(t *testing.T) {
	c, err := NewCanvas(160, 90, gg.RGBA{A: 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	rect, _ := scene.NewRect(2, 2, scene.Filled(gg.RGBA{R: 1, A: 1}, 4, 1))
	it := scene.Still(rect)
	it.Opacity = 0
	img, err := c.Render(scene.Frame{Items: []scene.Item{it}})
	if err != nil {
		t.Fatal(err)
	}
	if r, _, _ := pixel(img, 80, 45); r != 0 {
		t.Errorf("Transparent item should not draw, got red=%d", r)
	}
}

func TestRenderReturnsIndependentFrames(t *testing.T) {
	c, err := NewCanvas(160, 90, gg.RGBA{A: 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	rect, _ := scene.NewRect(2, 2, scene.Filled(gg.RGBA{R: 1, A: 1}, 4, 1))
	first, err := c.Render(scene.Frame{Items: []scene.Item{scene.Still(rect)}})
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Render(scene.Frame{})
	if err != nil {
		t.Fatal(err)
	}
	if r, _, _ := pixel(first, 80, 45); r < 200 {
		t.Errorf("First frame was overwritten by the next render, red=%d", r)
	}
	if r, _, _ := pixel(second, 80, 45); r != 0 {
		t.Errorf("Expected an empty second frame, got red=%d", r)
	}
	system.PutImage(first)
	system.PutImage(second)
}

func TestCanvasText(t *testing.T) {
	m, err := NewFontMeasurer()
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewCanvas(320, 180, gg.RGBA{A: 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	label, err := scene.NewText(m, "Hello", 96, true, 1, scene.Ink(gg.RGBA{R: 1, G: 1, B: 1, A: 1}))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "text.png")
	if err := c.SavePNG(scene.Frame{Items: []scene.Item{scene.Still(label)}}, path); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}

	img, err := c.Render(scene.Frame{Items: []scene.Item{scene.Still(label)}})
	if err != nil {
		t.Fatal(err)
	}
	lit := 0
	for y := 0; y < 180; y++ {
		for x := 0; x < 320; x++ {
			if r, _, _ := pixel(img, x, y); r > 128 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("Expected text pixels")
	}
	t.Logf("lit pixels: %d", lit)
}
