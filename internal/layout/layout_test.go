package layout

import (
	"errors"
	"math"
	"testing"

	"github.com/ivlev/scene2video/internal/scene"
)

func box(w, h float64) *scene.Object {
	return &scene.Object{Kind: scene.KindRect, Width: w, Height: h}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestPlace(t *testing.T) {
	frame := Frame(1920, 1080)
	anchor := box(2, 1)
	anchor.Shift(scene.Vec{X: 1, Y: 1})
	lookup := func(id string) (*scene.Object, error) {
		if id == "anchor" {
			return anchor, nil
		}
		return nil, errors.New("unknown " + id)
	}
	zero := 0.0
	at := scene.Vec{X: -2, Y: 3}

	tests := []struct {
		name string
		p    Placement
		want scene.Vec // centre after placement
	}{
		{"at", Placement{At: &at}, at},
		{"at with left pivot", Placement{At: &at, Pivot: scene.Left}, scene.Vec{X: -1.5, Y: 3}},
		{"center on", Placement{CenterOn: "anchor"}, scene.Vec{X: 1, Y: 1}},
		{"next to right", Placement{NextTo: "anchor", Dir: scene.Right}, scene.Vec{X: 2 + 0.25 + 0.5, Y: 1}},
		{"next to down aligned left", Placement{NextTo: "anchor", Dir: scene.Down, Align: scene.Left, Buff: &zero}, scene.Vec{X: 0.5, Y: 0}},
		{"edge up", Placement{Edge: scene.Up}, scene.Vec{X: 0, Y: 4 - 0.5 - 0.5}},
		{"corner ul", Placement{Edge: scene.UL}, scene.Vec{X: -frame.Width()/2 + 0.5 + 0.5, Y: 3}},
		{"offset only", Placement{Offset: scene.Vec{X: 1}}, scene.Vec{X: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := box(1, 1)
			if err := Place(obj, tt.p, lookup, frame); err != nil {
				t.Fatalf("Place failed: %v", err)
			}
			c := obj.Center()
			if !near(c.X, tt.want.X) || !near(c.Y, tt.want.Y) {
				t.Errorf("Expected centre %+v, got %+v", tt.want, c)
			}
		})
	}
}

func TestPlaceErrors(t *testing.T) {
	at := scene.Vec{}
	lookup := func(string) (*scene.Object, error) { return nil, errors.New("missing") }
	frame := Frame(1280, 720)

	if err := Place(box(1, 1), Placement{At: &at, Edge: scene.Up}, lookup, frame); !errors.Is(err, ErrPlacement) {
		t.Errorf("Expected ErrPlacement for two anchors, got %v", err)
	}
	if err := Place(box(1, 1), Placement{NextTo: "x"}, lookup, frame); !errors.Is(err, ErrPlacement) {
		t.Errorf("Expected ErrPlacement for missing direction, got %v", err)
	}
	if err := Place(box(1, 1), Placement{CenterOn: "x"}, lookup, frame); err == nil {
		t.Error("Expected lookup error")
	}
}

func TestShiftIsPure(t *testing.T) {
	obj := box(1, 1)
	before := obj.Bounds()
	at := scene.Vec{X: 3}
	if _, err := Shift(obj.Bounds(), Placement{At: &at}, nil, Frame(1920, 1080)); err != nil {
		t.Fatal(err)
	}
	if obj.Bounds() != before {
		t.Error("Shift moved the object")
	}
}

func TestArrange(t *testing.T) {
	ms := []*scene.Object{box(1, 1), box(2, 1), box(1, 1)}
	Arrange(ms, scene.Right, scene.Origin, 0.5)

	// total width 1+0.5+2+0.5+1 = 5, centred on origin
	if !near(ms[0].Bounds().Min.X, -2.5) || !near(ms[2].Bounds().Max.X, 2.5) {
		t.Errorf("Unexpected extents %+v .. %+v", ms[0].Bounds(), ms[2].Bounds())
	}
	if !near(ms[1].Center().X, 0) {
		t.Errorf("Expected middle member at origin, got %+v", ms[1].Center())
	}
}

func TestGrid(t *testing.T) {
	ms := []*scene.Object{box(1, 1), box(1, 1), box(1, 1), box(1, 1)}
	if err := Grid(ms, 2, 0, 0, 0); err != nil {
		t.Fatal(err)
	}
	if !near(ms[0].Center().X, -0.5) || !near(ms[0].Center().Y, 0.5) {
		t.Errorf("Unexpected first cell %+v", ms[0].Center())
	}
	if !near(ms[3].Center().X, 0.5) || !near(ms[3].Center().Y, -0.5) {
		t.Errorf("Unexpected last cell %+v", ms[3].Center())
	}
	if err := Grid(ms, 1, 1, 0, 0); !errors.Is(err, ErrPlacement) {
		t.Errorf("Expected ErrPlacement for small grid, got %v", err)
	}
}

func TestRingAndSpread(t *testing.T) {
	ms := []*scene.Object{box(0.2, 0.2), box(0.2, 0.2), box(0.2, 0.2), box(0.2, 0.2)}
	Ring(ms, 2, 90)
	if !near(ms[0].Center().Y, 2) || !near(ms[1].Center().X, -2) {
		t.Errorf("Unexpected ring positions %+v %+v", ms[0].Center(), ms[1].Center())
	}

	Spread(ms, scene.Vec{X: -3}, scene.Vec{X: 3})
	if !near(ms[0].Center().X, -3) || !near(ms[3].Center().X, 3) || !near(ms[1].Center().X, -1) {
		t.Errorf("Unexpected spread positions")
	}
}

func TestOverlaps(t *testing.T) {
	a, b, c, label := box(2, 2), box(2, 2), box(1, 1), box(0.5, 0.5)
	b.Shift(scene.Vec{X: 1.5})
	c.Shift(scene.Vec{X: 5})
	got := Overlaps([]string{"a", "b", "c", "label"}, []*scene.Object{a, b, c, label})
	if len(got) != 1 || got[0] != (Overlap{A: "a", B: "b"}) {
		t.Errorf("Expected single a/b overlap, got %+v", got)
	}
}

func TestFacing(t *testing.T) {
	a := scene.RectAround(scene.Vec{X: -2}, 1, 1)
	b := scene.RectAround(scene.Vec{X: 2}, 1, 1)
	from, to := Facing(a, b, 0.1)
	if !near(from.X, -1.4) || !near(to.X, 1.4) {
		t.Errorf("Unexpected endpoints %+v -> %+v", from, to)
	}
	from, to = Facing(b, a, 0)
	if !near(from.X, 1.5) || !near(to.X, -1.5) {
		t.Errorf("Unexpected reversed endpoints %+v -> %+v", from, to)
	}
}
