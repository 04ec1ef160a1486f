package scene

import (
	"math"

	"github.com/gogpu/gg"
)

// Affine is an axis-aligned scale about a pivot followed by a translation.
type Affine struct {
	SX, SY float64
	PX, PY float64
	DX, DY float64
}

// Identity leaves points unchanged.
func Identity() Affine {
	return Affine{SX: 1, SY: 1}
}

// Apply maps a scene point.
func (a Affine) Apply(p Vec) Vec {
	return Vec{
		X: a.PX + (p.X-a.PX)*a.SX + a.DX,
		Y: a.PY + (p.Y-a.PY)*a.SY + a.DY,
	}
}

// Factor is the geometric mean scale, used for stroke widths and font sizes.
func (a Affine) Factor() float64 {
	return math.Sqrt(math.Abs(a.SX * a.SY))
}

// IsIdentity reports whether a leaves points unchanged.
func (a Affine) IsIdentity() bool {
	return a.SX == 1 && a.SY == 1 && a.DX == 0 && a.DY == 0
}

// Item is one object as seen in a single frame.
type Item struct {
	Obj     *Object
	Opacity float64
	// Reveal is the drawn fraction of outlines and text, 0..1.
	Reveal float64
	Xf     Affine
	// Tint blends paint toward a highlight colour by TintMix.
	Tint    gg.RGBA
	TintMix float64
}

// Still returns a fully drawn, untransformed item.
func Still(o *Object) Item {
	return Item{Obj: o, Opacity: 1, Reveal: 1, Xf: Identity()}
}

// Frame is the ordered draw list of one rendered image.
type Frame struct {
	Items []Item
}

// Visible reports whether any item contributes pixels.
func (f Frame) Visible() bool {
	for _, it := range f.Items {
		if it.Opacity > 0 && it.Reveal > 0 {
			return true
		}
	}
	return false
}

// Weight is a rough measure of how much is on screen.
func (f Frame) Weight() int {
	n := 0
	for _, it := range f.Items {
		if it.Opacity > 0 && it.Reveal > 0 {
			n += it.Obj.Leaves()
		}
	}
	return n
}
