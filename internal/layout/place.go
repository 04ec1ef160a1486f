package layout

import (
	"errors"
	"fmt"

	"github.com/ivlev/scene2video/internal/scene"
)

// Spacing constants in scene units.
const (
	DefaultBuff = 0.25 // between neighbouring objects
	EdgeBuff    = 0.5  // between an object and the frame border
)

// ErrPlacement is returned for a placement record that names no anchor
// or more than one.
var ErrPlacement = errors.New("invalid placement")

// Placement is a layout record: one anchor plus an optional offset.
// Exactly one of At, CenterOn, NextTo or Edge may be set; an empty
// record leaves the object where it was built.
type Placement struct {
	// At puts the object's Pivot point on an absolute position.
	At *scene.Vec
	// CenterOn puts the object's Pivot point on another object's centre.
	CenterOn string
	// NextTo puts the object beside another one in direction Dir,
	// sharing the edge named by Align.
	NextTo string
	Dir    scene.Vec
	Align  scene.Vec
	// Edge moves the object to a frame edge or corner.
	Edge scene.Vec
	// Buff overrides DefaultBuff or EdgeBuff.
	Buff *float64
	// Pivot selects which point of the object is anchored (zero = centre).
	Pivot  scene.Vec
	Offset scene.Vec
}

// Lookup resolves an object id to its current geometry.
type Lookup func(id string) (*scene.Object, error)

// IsZero reports whether the record has no anchor and no offset.
func (p Placement) IsZero() bool {
	return p.At == nil && p.CenterOn == "" && p.NextTo == "" && p.Edge == (scene.Vec{}) && p.Offset == (scene.Vec{})
}

func (p Placement) anchors() int {
	n := 0
	if p.At != nil {
		n++
	}
	if p.CenterOn != "" {
		n++
	}
	if p.NextTo != "" {
		n++
	}
	if p.Edge != (scene.Vec{}) {
		n++
	}
	return n
}

// Shift computes how far a box with bounds box must move to satisfy p.
// It reads the other objects through lookup and never mutates anything.
func Shift(box scene.Rect, p Placement, lookup Lookup, frame scene.Rect) (scene.Vec, error) {
	if p.anchors() > 1 {
		return scene.Vec{}, fmt.Errorf("%w: more than one anchor", ErrPlacement)
	}

	var d scene.Vec
	switch {
	case p.At != nil:
		d = p.At.Sub(box.Side(p.Pivot))
	case p.CenterOn != "":
		other, err := lookup(p.CenterOn)
		if err != nil {
			return scene.Vec{}, err
		}
		d = other.Center().Sub(box.Side(p.Pivot))
	case p.NextTo != "":
		if p.Dir == (scene.Vec{}) {
			return scene.Vec{}, fmt.Errorf("%w: next_to %q without direction", ErrPlacement, p.NextTo)
		}
		other, err := lookup(p.NextTo)
		if err != nil {
			return scene.Vec{}, err
		}
		d = NextTo(box, other.Bounds(), p.Dir, p.Align, buffOr(p.Buff, DefaultBuff))
	case p.Edge != (scene.Vec{}):
		d = ToEdge(box, frame, p.Edge, buffOr(p.Buff, EdgeBuff))
	}
	return d.Add(p.Offset), nil
}

// Place applies p to obj in place.
func Place(obj *scene.Object, p Placement, lookup Lookup, frame scene.Rect) error {
	d, err := Shift(obj.Bounds(), p, lookup, frame)
	if err != nil {
		return err
	}
	obj.Shift(d)
	return nil
}

// NextTo returns the shift that puts box beside target in direction dir,
// buff apart, with the edges named by align lined up.
func NextTo(box, target scene.Rect, dir, align scene.Vec, buff float64) scene.Vec {
	to := target.Side(align.Add(dir))
	from := box.Side(align.Sub(dir))
	return to.Sub(from).Add(dir.Mul(buff))
}

// ToEdge returns the shift that moves box against the frame border in
// direction edge, leaving buff. Only the axes named by edge move.
func ToEdge(box, frame scene.Rect, edge scene.Vec, buff float64) scene.Vec {
	target := frame.Side(edge).Sub(edge.Mul(buff))
	d := target.Sub(box.Side(edge))
	if edge.X == 0 {
		d.X = 0
	}
	if edge.Y == 0 {
		d.Y = 0
	}
	return d
}

// Frame returns the visible frame for a pixel resolution.
func Frame(width, height int) scene.Rect {
	h := scene.FrameHeight
	w := h * float64(width) / float64(height)
	return scene.RectAround(scene.Origin, w, h)
}

// Facing returns arrow endpoints on the facing edges of two boxes, with
// gap left at both ends.
func Facing(a, b scene.Rect, gap float64) (scene.Vec, scene.Vec) {
	d := b.Center().Sub(a.Center())
	dir := scene.Right
	switch {
	case abs(d.X) >= abs(d.Y) && d.X < 0:
		dir = scene.Left
	case abs(d.X) < abs(d.Y) && d.Y >= 0:
		dir = scene.Up
	case abs(d.X) < abs(d.Y):
		dir = scene.Down
	}
	from := a.Side(dir).Add(dir.Mul(gap))
	to := b.Side(dir.Mul(-1)).Sub(dir.Mul(gap))
	return from, to
}

func buffOr(b *float64, def float64) float64 {
	if b == nil {
		return def
	}
	return *b
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
