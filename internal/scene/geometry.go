package scene

import "math"

// FrameHeight is the height of the visible frame in scene units.
// The width follows the pixel aspect ratio.
const FrameHeight = 8.0

// Vec is a point or offset in scene units (origin at the frame centre, y up).
type Vec struct {
	X float64
	Y float64
}

// Named directions.
var (
	Origin = Vec{0, 0}
	Up     = Vec{0, 1}
	Down   = Vec{0, -1}
	Left   = Vec{-1, 0}
	Right  = Vec{1, 0}
	UL     = Vec{-1, 1}
	UR     = Vec{1, 1}
	DL     = Vec{-1, -1}
	DR     = Vec{1, -1}
)

// Direction resolves a direction name ("up", "dr", "origin", ...).
func Direction(name string) (Vec, bool) {
	switch name {
	case "origin", "center", "centre":
		return Origin, true
	case "up", "top":
		return Up, true
	case "down", "bottom":
		return Down, true
	case "left":
		return Left, true
	case "right":
		return Right, true
	case "ul", "up_left":
		return UL, true
	case "ur", "up_right":
		return UR, true
	case "dl", "down_left":
		return DL, true
	case "dr", "down_right":
		return DR, true
	}
	return Vec{}, false
}

func (v Vec) Add(o Vec) Vec     { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec     { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Mul(f float64) Vec { return Vec{v.X * f, v.Y * f} }
func (v Vec) Len() float64      { return math.Hypot(v.X, v.Y) }

// Lerp interpolates between v and o.
func (v Vec) Lerp(o Vec, t float64) Vec {
	return Vec{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

// Unit returns v scaled to length 1, or the zero vector.
func (v Vec) Unit() Vec {
	l := v.Len()
	if l == 0 {
		return Vec{}
	}
	return Vec{v.X / l, v.Y / l}
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	Min Vec
	Max Vec
}

// RectAround returns the box of size w x h centred on c.
func RectAround(c Vec, w, h float64) Rect {
	return Rect{Min: Vec{c.X - w/2, c.Y - h/2}, Max: Vec{c.X + w/2, c.Y + h/2}}
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Center returns the midpoint of the box.
func (r Rect) Center() Vec {
	return Vec{(r.Min.X + r.Max.X) / 2, (r.Min.Y + r.Max.Y) / 2}
}

// Side returns the point of the box in direction dir from its centre:
// Right gives the middle of the right edge, UR the top-right corner.
func (r Rect) Side(dir Vec) Vec {
	c := r.Center()
	return Vec{c.X + sign(dir.X)*r.Width()/2, c.Y + sign(dir.Y)*r.Height()/2}
}

// Union returns the smallest box containing both.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: Vec{math.Min(r.Min.X, o.Min.X), math.Min(r.Min.Y, o.Min.Y)},
		Max: Vec{math.Max(r.Max.X, o.Max.X), math.Max(r.Max.Y, o.Max.Y)},
	}
}

// Intersects reports whether the boxes overlap by more than eps on both axes.
func (r Rect) Intersects(o Rect, eps float64) bool {
	return r.Min.X+eps < o.Max.X && o.Min.X+eps < r.Max.X &&
		r.Min.Y+eps < o.Max.Y && o.Min.Y+eps < r.Max.Y
}

// Contains reports whether o lies inside r (with tolerance eps).
func (r Rect) Contains(o Rect, eps float64) bool {
	return o.Min.X >= r.Min.X-eps && o.Max.X <= r.Max.X+eps &&
		o.Min.Y >= r.Min.Y-eps && o.Max.Y <= r.Max.Y+eps
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func boundsOf(pts []Vec) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	r := Rect{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		r.Min.X = math.Min(r.Min.X, p.X)
		r.Min.Y = math.Min(r.Min.Y, p.Y)
		r.Max.X = math.Max(r.Max.X, p.X)
		r.Max.Y = math.Max(r.Max.Y, p.Y)
	}
	return r
}

// Path is a flattened polyline in scene units.
type Path struct {
	Points []Vec
	Closed bool
	// Solid paths are filled with the stroke colour (arrow tips, dots).
	Solid bool
}

// Length returns the polyline length including the closing segment.
func (p Path) Length() float64 {
	total := 0.0
	for i := 1; i < len(p.Points); i++ {
		total += p.Points[i].Sub(p.Points[i-1]).Len()
	}
	if p.Closed && len(p.Points) > 1 {
		total += p.Points[0].Sub(p.Points[len(p.Points)-1]).Len()
	}
	return total
}

// Partial returns the leading fraction t of the path as an open polyline.
func (p Path) Partial(t float64) Path {
	if t >= 1 {
		return p
	}
	pts := p.Points
	if p.Closed && len(pts) > 1 {
		pts = append(append([]Vec{}, pts...), pts[0])
	}
	if t <= 0 || len(pts) < 2 {
		return Path{}
	}
	target := p.Length() * t
	out := []Vec{pts[0]}
	for i := 1; i < len(pts); i++ {
		seg := pts[i].Sub(pts[i-1]).Len()
		if seg >= target {
			if seg > 0 {
				out = append(out, pts[i-1].Lerp(pts[i], target/seg))
			}
			break
		}
		target -= seg
		out = append(out, pts[i])
	}
	return Path{Points: out, Solid: p.Solid}
}

func arcPoints(c Vec, r, start, sweep float64, n int) []Vec {
	pts := make([]Vec, 0, n+1)
	for i := 0; i <= n; i++ {
		a := start + sweep*float64(i)/float64(n)
		pts = append(pts, Vec{c.X + r*math.Cos(a), c.Y + r*math.Sin(a)})
	}
	return pts
}

func ellipsePoints(c Vec, rx, ry float64, n int) []Vec {
	pts := make([]Vec, 0, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts = append(pts, Vec{c.X + rx*math.Cos(a), c.Y + ry*math.Sin(a)})
	}
	return pts
}

func segmentsFor(sweep float64) int {
	n := int(math.Ceil(math.Abs(sweep) / (2 * math.Pi) * 64))
	if n < 8 {
		n = 8
	}
	return n
}
