package scene

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/gg"
	"github.com/jinzhu/copier"
)

// ErrGeometry marks an object that cannot be built with the given dimensions.
var ErrGeometry = errors.New("invalid geometry")

// Kind names a primitive.
type Kind string

const (
	KindRect      Kind = "rect"
	KindRoundRect Kind = "round_rect"
	KindCircle    Kind = "circle"
	KindEllipse   Kind = "ellipse"
	KindArc       Kind = "arc"
	KindSector    Kind = "sector"
	KindLine      Kind = "line"
	KindArrow     Kind = "arrow"
	KindDot       Kind = "dot"
	KindText      Kind = "text"
	KindMath      Kind = "math"
	KindImage     Kind = "image"
	KindQR        Kind = "qr"
	KindGroup     Kind = "group"
)

// Style holds the paint of a primitive. Shapes use Stroke and Fill,
// text uses Fill (or Gradient, one colour per character span).
type Style struct {
	Stroke      gg.RGBA
	Fill        gg.RGBA
	StrokeWidth float64
	FillOpacity float64
	Gradient    []gg.RGBA
}

// Object is a shape, a text label or a composite of other objects.
// Objects are plain data; animations never mutate them.
type Object struct {
	Name string
	Kind Kind

	// Pos is the centre for box-like kinds and the circle centre for
	// circles, arcs and sectors.
	Pos    Vec
	Width  float64
	Height float64
	// Radius is the circle radius, or the corner radius for round_rect.
	Radius     float64
	StartAngle float64
	Angle      float64

	From Vec
	To   Vec
	Tip  float64

	Text        string
	FontSize    float64
	Bold        bool
	LineSpacing float64

	Source string
	Page   int

	Style    Style
	Children []*Object
}

// Validate checks the construction-time invariants of the object and its members.
func (o *Object) Validate() error {
	switch o.Kind {
	case KindRect, KindEllipse, KindImage, KindQR:
		if o.Width <= 0 || o.Height <= 0 {
			return fmt.Errorf("%w: %s %q has size %.3fx%.3f", ErrGeometry, o.Kind, o.Name, o.Width, o.Height)
		}
	case KindRoundRect:
		if o.Width <= 0 || o.Height <= 0 || o.Radius < 0 {
			return fmt.Errorf("%w: %s %q has size %.3fx%.3f r=%.3f", ErrGeometry, o.Kind, o.Name, o.Width, o.Height, o.Radius)
		}
	case KindCircle, KindDot:
		if o.Radius <= 0 {
			return fmt.Errorf("%w: %s %q has radius %.3f", ErrGeometry, o.Kind, o.Name, o.Radius)
		}
	case KindArc, KindSector:
		if o.Radius <= 0 || o.Angle == 0 {
			return fmt.Errorf("%w: %s %q has radius %.3f angle %.3f", ErrGeometry, o.Kind, o.Name, o.Radius, o.Angle)
		}
	case KindLine, KindArrow:
		if o.From == o.To {
			return fmt.Errorf("%w: %s %q has zero length", ErrGeometry, o.Kind, o.Name)
		}
	case KindText, KindMath:
		if strings.TrimSpace(o.Text) == "" {
			return fmt.Errorf("%w: %s %q has no text", ErrGeometry, o.Kind, o.Name)
		}
		if o.FontSize <= 0 {
			return fmt.Errorf("%w: %s %q has font size %.1f", ErrGeometry, o.Kind, o.Name, o.FontSize)
		}
	case KindGroup:
		for _, c := range o.Children {
			if err := c.Validate(); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrGeometry, o.Kind)
	}
	return nil
}

// Bounds returns the bounding box in scene units. Composites return the
// union of their members; an empty composite has a zero box at its Pos.
func (o *Object) Bounds() Rect {
	switch o.Kind {
	case KindCircle, KindDot:
		return RectAround(o.Pos, 2*o.Radius, 2*o.Radius)
	case KindArc:
		return boundsOf(arcPoints(o.Pos, o.Radius, o.StartAngle, o.Angle, segmentsFor(o.Angle)))
	case KindSector:
		pts := arcPoints(o.Pos, o.Radius, o.StartAngle, o.Angle, segmentsFor(o.Angle))
		return boundsOf(append(pts, o.Pos))
	case KindLine, KindArrow:
		return boundsOf([]Vec{o.From, o.To})
	case KindGroup:
		if len(o.Children) == 0 {
			return Rect{Min: o.Pos, Max: o.Pos}
		}
		r := o.Children[0].Bounds()
		for _, c := range o.Children[1:] {
			r = r.Union(c.Bounds())
		}
		return r
	}
	return RectAround(o.Pos, o.Width, o.Height)
}

// Center returns the centre of the bounding box.
func (o *Object) Center() Vec {
	return o.Bounds().Center()
}

// Shift translates the object and all of its members.
func (o *Object) Shift(d Vec) {
	o.Pos = o.Pos.Add(d)
	o.From = o.From.Add(d)
	o.To = o.To.Add(d)
	for _, c := range o.Children {
		c.Shift(d)
	}
}

// MoveTo shifts the object so that its bounding box is centred on p.
func (o *Object) MoveTo(p Vec) {
	o.Shift(p.Sub(o.Center()))
}

// Scale resizes the object about pivot.
func (o *Object) Scale(f float64, pivot Vec) {
	scalePt := func(p Vec) Vec { return pivot.Add(p.Sub(pivot).Mul(f)) }
	o.Pos = scalePt(o.Pos)
	o.From = scalePt(o.From)
	o.To = scalePt(o.To)
	o.Width *= f
	o.Height *= f
	o.Radius *= f
	o.Tip *= f
	o.FontSize *= f
	for _, c := range o.Children {
		c.Scale(f, pivot)
	}
}

// Clone returns a deep copy; the copy shares nothing with o.
func (o *Object) Clone() *Object {
	var dst Object
	if err := copier.CopyWithOption(&dst, o, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on mismatched types, which cannot happen here
		panic(fmt.Sprintf("scene: clone %q: %v", o.Name, err))
	}
	return &dst
}

// Walk visits o and all of its members depth first.
func (o *Object) Walk(fn func(*Object)) {
	fn(o)
	for _, c := range o.Children {
		c.Walk(fn)
	}
}

// Leaves returns the number of non-group objects in the tree.
func (o *Object) Leaves() int {
	n := 0
	o.Walk(func(x *Object) {
		if x.Kind != KindGroup {
			n++
		}
	})
	return n
}

// Child resolves a dotted index path ("2.0") or a member name.
func (o *Object) Child(path string) (*Object, error) {
	cur := o
	for _, part := range strings.Split(path, ".") {
		if cur.Kind != KindGroup {
			return nil, fmt.Errorf("%q is not a group", cur.Name)
		}
		next := (*Object)(nil)
		if i, err := strconv.Atoi(part); err == nil {
			if i < 0 || i >= len(cur.Children) {
				return nil, fmt.Errorf("index %d out of range in %q (%d members)", i, cur.Name, len(cur.Children))
			}
			next = cur.Children[i]
		} else {
			for _, c := range cur.Children {
				if c.Name == part {
					next = c
					break
				}
			}
			if next == nil {
				return nil, fmt.Errorf("no member %q in %q", part, cur.Name)
			}
		}
		cur = next
	}
	return cur, nil
}

// Lines splits text content into rendered lines.
func (o *Object) Lines() []string {
	return strings.Split(o.Text, "\n")
}

// Outline flattens the drawable geometry into polylines. Text, images and
// composites have no outline of their own.
func (o *Object) Outline() []Path {
	switch o.Kind {
	case KindRect:
		r := o.Bounds()
		return []Path{{Closed: true, Points: []Vec{
			{r.Min.X, r.Max.Y}, {r.Max.X, r.Max.Y}, {r.Max.X, r.Min.Y}, {r.Min.X, r.Min.Y},
		}}}
	case KindRoundRect:
		return []Path{{Closed: true, Points: roundRectPoints(o.Bounds(), o.Radius)}}
	case KindCircle:
		return []Path{{Closed: true, Points: ellipsePoints(o.Pos, o.Radius, o.Radius, 64)}}
	case KindDot:
		return []Path{{Closed: true, Solid: true, Points: ellipsePoints(o.Pos, o.Radius, o.Radius, 24)}}
	case KindEllipse:
		return []Path{{Closed: true, Points: ellipsePoints(o.Pos, o.Width/2, o.Height/2, 64)}}
	case KindArc:
		return []Path{{Points: arcPoints(o.Pos, o.Radius, o.StartAngle, o.Angle, segmentsFor(o.Angle))}}
	case KindSector:
		pts := append([]Vec{o.Pos}, arcPoints(o.Pos, o.Radius, o.StartAngle, o.Angle, segmentsFor(o.Angle))...)
		return []Path{{Closed: true, Points: pts}}
	case KindLine:
		return []Path{{Points: []Vec{o.From, o.To}}}
	case KindArrow:
		return arrowPaths(o.From, o.To, o.Tip)
	}
	return nil
}

func arrowPaths(from, to Vec, tip float64) []Path {
	dir := to.Sub(from).Unit()
	normal := Vec{-dir.Y, dir.X}
	base := to.Sub(dir.Mul(tip))
	return []Path{
		{Points: []Vec{from, base}},
		{Closed: true, Solid: true, Points: []Vec{
			to, base.Add(normal.Mul(tip / 2)), base.Sub(normal.Mul(tip / 2)),
		}},
	}
}

func roundRectPoints(r Rect, radius float64) []Vec {
	radius = math.Min(radius, math.Min(r.Width(), r.Height())/2)
	if radius <= 0 {
		return []Vec{{r.Min.X, r.Max.Y}, {r.Max.X, r.Max.Y}, {r.Max.X, r.Min.Y}, {r.Min.X, r.Min.Y}}
	}
	corners := []struct {
		c     Vec
		start float64
	}{
		{Vec{r.Max.X - radius, r.Max.Y - radius}, 0},
		{Vec{r.Min.X + radius, r.Max.Y - radius}, math.Pi / 2},
		{Vec{r.Min.X + radius, r.Min.Y + radius}, math.Pi},
		{Vec{r.Max.X - radius, r.Min.Y + radius}, 3 * math.Pi / 2},
	}
	var pts []Vec
	for _, k := range corners {
		pts = append(pts, arcPoints(k.c, radius, k.start, math.Pi/2, 8)...)
	}
	return pts
}
