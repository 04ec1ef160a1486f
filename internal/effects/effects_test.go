package effects

import (
	"errors"
	"math"
	"testing"

	"github.com/ivlev/scene2video/internal/scene"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func rect(w, h float64) *scene.Object {
	return &scene.Object{Kind: scene.KindRect, Width: w, Height: h}
}

func TestRates(t *testing.T) {
	for _, name := range RateNames() {
		r, err := RateByName(name)
		if err != nil {
			t.Fatalf("RateByName(%s): %v", name, err)
		}
		if name == "there_and_back" {
			if !near(r(0), 0) || !near(r(0.5), 1) || !near(r(1), 0) {
				t.Errorf("there_and_back: got %f %f %f", r(0), r(0.5), r(1))
			}
			continue
		}
		if !near(r(0), 0) || !near(r(1), 1) {
			t.Errorf("%s: expected 0..1, got %f..%f", name, r(0), r(1))
		}
	}
	if _, err := RateByName("wobble"); err == nil {
		t.Error("Expected error for unknown rate")
	}
	if s := Smooth(0.25); s >= 0.25 {
		t.Errorf("Expected smooth to start slow, got %f", s)
	}
}

func TestLagWindow(t *testing.T) {
	tests := []struct {
		i, n       int
		lag        float64
		start, end float64
	}{
		{0, 1, 0.5, 0, 1},
		{0, 3, 0, 0, 1},
		{2, 3, 0, 0, 1},
		{0, 3, 0.5, 0, 0.5},
		{1, 3, 0.5, 0.25, 0.75},
		{2, 3, 0.5, 0.5, 1},
		{3, 4, 1, 0.75, 1},
	}
	for _, tt := range tests {
		s, e := LagWindow(tt.i, tt.n, tt.lag)
		if !near(s, tt.start) || !near(e, tt.end) {
			t.Errorf("LagWindow(%d,%d,%.2f) = [%.3f,%.3f], expected [%.3f,%.3f]", tt.i, tt.n, tt.lag, s, e, tt.start, tt.end)
		}
	}
}

func TestClipEndpoints(t *testing.T) {
	obj := rect(2, 1)
	tests := []struct {
		kind         Kind
		startOpacity float64
		endOpacity   float64
		startReveal  float64
		endReveal    float64
	}{
		{FadeIn, 0, 1, 1, 1},
		{FadeOut, 1, 0, 1, 1},
		{Write, 1, 1, 0, 1},
		{Unwrite, 1, 1, 1, 0},
		{Create, 1, 1, 0, 1},
		{Uncreate, 1, 1, 1, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			c := Clip{Kind: tt.kind, ID: "x", Obj: obj, Shift: scene.Up}
			first, last := c.Items(0)[0], c.Items(1)[0]
			if !near(first.Opacity, tt.startOpacity) || !near(last.Opacity, tt.endOpacity) {
				t.Errorf("Opacity %f -> %f", first.Opacity, last.Opacity)
			}
			if !near(first.Reveal, tt.startReveal) || !near(last.Reveal, tt.endReveal) {
				t.Errorf("Reveal %f -> %f", first.Reveal, last.Reveal)
			}
		})
	}
}

func TestFadeInShift(t *testing.T) {
	c := Clip{Kind: FadeIn, Obj: rect(1, 1), Shift: scene.Up, Rate: rates["linear"]}
	p := c.Items(0)[0].Xf.Apply(scene.Origin)
	if !near(p.Y, -1) {
		t.Errorf("Expected fade_in to start one unit below, got %+v", p)
	}
	p = c.Items(1)[0].Xf.Apply(scene.Origin)
	if !near(p.Y, 0) {
		t.Errorf("Expected fade_in to end in place, got %+v", p)
	}
}

func TestGrowArrowPivot(t *testing.T) {
	arrow, err := scene.NewArrow(scene.Vec{X: -2}, scene.Vec{X: 2}, 0, scene.Style{})
	if err != nil {
		t.Fatal(err)
	}
	it := Clip{Kind: GrowArrow, Obj: arrow}.Items(0)[0]
	tip := it.Xf.Apply(arrow.To)
	if !near(tip.X, -2) {
		t.Errorf("Expected arrow to start collapsed on its tail, tip at %+v", tip)
	}
}

func TestTransformEnds(t *testing.T) {
	src, dst := rect(1, 1), rect(4, 2)
	dst.Shift(scene.Vec{X: 3})
	c := Clip{Kind: Transform, Obj: src, To: dst}

	start := c.Items(0)
	if len(start) != 2 || !near(start[0].Opacity, 1) || !near(start[1].Opacity, 0) {
		t.Fatalf("Unexpected start items %+v", start)
	}
	end := c.Items(1)
	if !near(end[0].Opacity, 0) || !near(end[1].Opacity, 1) || !end[1].Xf.IsIdentity() {
		t.Errorf("Expected destination untransformed at the end, got %+v", end[1])
	}
	// halfway, the source is stretched onto the moving box
	mid := c.Items(0.5)[0].Xf.Apply(scene.Origin)
	if mid.X <= 0 || mid.X >= 3 {
		t.Errorf("Expected midpoint between boxes, got %+v", mid)
	}
}

func TestLaggedGroup(t *testing.T) {
	a, b := rect(1, 1), rect(1, 1)
	g := scene.NewGroup(a, b)
	c := Clip{Kind: FadeIn, Obj: g, Lag: 1, Rate: rates["linear"]}

	items := c.Items(0.5)
	if len(items) != 2 {
		t.Fatalf("Expected one item per member, got %d", len(items))
	}
	if !near(items[0].Opacity, 1) || !near(items[1].Opacity, 0) {
		t.Errorf("Expected first member done and second not started, got %f %f", items[0].Opacity, items[1].Opacity)
	}
}

func TestParse(t *testing.T) {
	if k, err := Parse("grow_arrow"); err != nil || k != GrowArrow {
		t.Errorf("Parse(grow_arrow) = %v, %v", k, err)
	}
	if _, err := Parse("spin"); !errors.Is(err, ErrUnknownEffect) {
		t.Errorf("Expected ErrUnknownEffect, got %v", err)
	}
	if !FadeIn.Enters() || FadeIn.Leaves() || !FadeOut.Leaves() || Transform.Enters() {
		t.Error("Unexpected enter/leave classification")
	}
}
