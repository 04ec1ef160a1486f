package layout

import (
	"fmt"
	"math"

	"github.com/ivlev/scene2video/internal/scene"
)

// Arrange chains members one after another in direction dir, buff apart,
// then centres the whole run on the origin.
func Arrange(members []*scene.Object, dir, align scene.Vec, buff float64) {
	for i := 1; i < len(members); i++ {
		prev := members[i-1].Bounds()
		members[i].Shift(NextTo(members[i].Bounds(), prev, dir, align, buff))
	}
	centre(members)
}

// Grid lays members out row by row in cells sized to the largest member
// of each row and column. Either rows or cols may be zero.
func Grid(members []*scene.Object, rows, cols int, hbuff, vbuff float64) error {
	n := len(members)
	if n == 0 {
		return nil
	}
	switch {
	case rows <= 0 && cols <= 0:
		cols = int(math.Ceil(math.Sqrt(float64(n))))
		rows = (n + cols - 1) / cols
	case rows <= 0:
		rows = (n + cols - 1) / cols
	case cols <= 0:
		cols = (n + rows - 1) / rows
	}
	if rows*cols < n {
		return fmt.Errorf("%w: grid %dx%d cannot hold %d members", ErrPlacement, rows, cols, n)
	}

	colW := make([]float64, cols)
	rowH := make([]float64, rows)
	for i, m := range members {
		b := m.Bounds()
		r, c := i/cols, i%cols
		colW[c] = math.Max(colW[c], b.Width())
		rowH[r] = math.Max(rowH[r], b.Height())
	}

	y := 0.0
	for r := 0; r < rows; r++ {
		x := 0.0
		for c := 0; c < cols; c++ {
			if i := r*cols + c; i < n {
				members[i].MoveTo(scene.Vec{X: x + colW[c]/2, Y: y - rowH[r]/2})
			}
			x += colW[c] + hbuff
		}
		y -= rowH[r] + vbuff
	}
	centre(members)
	return nil
}

// Ring puts member centres on a circle, counter-clockwise from startDeg.
func Ring(members []*scene.Object, radius, startDeg float64) {
	n := len(members)
	for i, m := range members {
		a := (startDeg + 360*float64(i)/float64(n)) * math.Pi / 180
		m.MoveTo(scene.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a)})
	}
}

// Spread distributes member centres evenly along the segment from..to.
// A single member goes to the midpoint.
func Spread(members []*scene.Object, from, to scene.Vec) {
	n := len(members)
	for i, m := range members {
		t := 0.5
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		m.MoveTo(from.Lerp(to, t))
	}
}

func centre(members []*scene.Object) {
	if len(members) == 0 {
		return
	}
	b := members[0].Bounds()
	for _, m := range members[1:] {
		b = b.Union(m.Bounds())
	}
	d := b.Center().Mul(-1)
	for _, m := range members {
		m.Shift(d)
	}
}

// Overlap names two objects whose boxes intersect.
type Overlap struct {
	A, B string
}

// Overlaps reports pairs of named objects whose bounding boxes intersect
// by more than a hair. Objects fully inside another (labels in boxes)
// are not reported.
func Overlaps(names []string, objs []*scene.Object) []Overlap {
	const eps = 1e-3
	var out []Overlap
	for i := range objs {
		a := objs[i].Bounds()
		for j := i + 1; j < len(objs); j++ {
			b := objs[j].Bounds()
			if !a.Intersects(b, eps) || a.Contains(b, eps) || b.Contains(a, eps) {
				continue
			}
			out = append(out, Overlap{A: names[i], B: names[j]})
		}
	}
	return out
}

// Offscreen reports whether an object sticks out of the frame.
func Offscreen(obj *scene.Object, frame scene.Rect) bool {
	return !frame.Contains(obj.Bounds(), 1e-3)
}
