// Package effects turns animation requests (fade, write, create, transform,
// grow, indicate) into per-frame display items.
package effects

import (
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gg"

	"github.com/ivlev/scene2video/internal/scene"
)

// Kind names an animation.
type Kind string

const (
	FadeIn         Kind = "fade_in"
	FadeOut        Kind = "fade_out"
	Write          Kind = "write"
	Unwrite        Kind = "unwrite"
	Create         Kind = "create"
	Uncreate       Kind = "uncreate"
	Transform      Kind = "transform"
	GrowArrow      Kind = "grow_arrow"
	GrowFromEdge   Kind = "grow_from_edge"
	GrowFromCenter Kind = "grow_from_center"
	Indicate       Kind = "indicate"
)

// ErrUnknownEffect is returned by Parse for names that are not animations.
var ErrUnknownEffect = errors.New("unknown effect")

// Kinds lists the supported animations.
func Kinds() []Kind {
	return []Kind{FadeIn, FadeOut, Write, Unwrite, Create, Uncreate, Transform,
		GrowArrow, GrowFromEdge, GrowFromCenter, Indicate}
}

// Parse validates an animation name.
func Parse(name string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEffect, name)
}

// Enters reports whether the target becomes live on the canvas.
func (k Kind) Enters() bool {
	switch k {
	case FadeIn, Write, Create, GrowArrow, GrowFromEdge, GrowFromCenter:
		return true
	}
	return false
}

// Leaves reports whether the target is gone after the animation.
func (k Kind) Leaves() bool {
	switch k {
	case FadeOut, Unwrite, Uncreate:
		return true
	}
	return false
}

// Effect yields the display items of one animation at global progress
// alpha in [0,1] of the surrounding play call.
type Effect interface {
	Items(alpha float64) []scene.Item
}

// Clip is one animation applied to one object.
type Clip struct {
	Kind Kind
	ID   string
	Obj  *scene.Object

	// Transform only: the object that replaces Obj.
	ToID string
	To   *scene.Object

	Shift scene.Vec
	// Scale is the start scale of fade_in or the end scale of fade_out (0 = 1).
	Scale float64
	Edge  scene.Vec
	Rate  Rate
	// Lag spreads the members of a composite target.
	Lag float64

	// Start and End bound the clip within the play call, as fractions.
	Start, End float64
}

var _ Effect = Clip{}

// Local converts global progress to eased clip progress.
func (c Clip) Local(alpha float64) float64 {
	start, end := c.Start, c.End
	if end <= start {
		start, end = 0, 1
	}
	p := clamp01((alpha - start) / (end - start))
	rate := c.Rate
	if rate == nil {
		rate = Smooth
	}
	return rate(p)
}

// Items implements Effect.
func (c Clip) Items(alpha float64) []scene.Item {
	if c.Lag > 0 && c.Obj.Kind == scene.KindGroup && len(c.Obj.Children) > 1 && c.Kind != Transform {
		return c.lagged(alpha)
	}
	return c.at(c.Obj, c.Local(alpha))
}

// lagged animates the members of a composite one after another.
func (c Clip) lagged(alpha float64) []scene.Item {
	start, end := c.Start, c.End
	if end <= start {
		start, end = 0, 1
	}
	local := clamp01((alpha - start) / (end - start))
	n := len(c.Obj.Children)
	out := make([]scene.Item, 0, n)
	for i, member := range c.Obj.Children {
		s, e := LagWindow(i, n, c.Lag)
		sub := c
		sub.Obj, sub.Start, sub.End, sub.Lag = member, s, e, 0
		out = append(out, sub.at(member, sub.Local(local))...)
	}
	return out
}

// LagWindow returns the [start, end) fraction of member i out of n when
// each member starts after lag of the previous one's duration.
func LagWindow(i, n int, lag float64) (float64, float64) {
	if n <= 1 {
		return 0, 1
	}
	d := 1 / (1 + float64(n-1)*lag)
	s := float64(i) * lag * d
	return s, s + d
}

// Lagged assigns staggered windows to clips played together.
func Lagged(clips []Clip, lag float64) []Clip {
	out := make([]Clip, len(clips))
	for i, c := range clips {
		c.Start, c.End = LagWindow(i, len(clips), lag)
		out[i] = c
	}
	return out
}

var highlight = gg.RGBA{R: 1, G: 1, B: 0, A: 1}

func (c Clip) at(obj *scene.Object, p float64) []scene.Item {
	it := scene.Still(obj)
	scale := c.Scale
	if scale == 0 {
		scale = 1
	}
	centre := obj.Center()

	switch c.Kind {
	case FadeIn:
		it.Opacity = p
		s := scale + (1-scale)*p
		it.Xf = scene.Affine{SX: s, SY: s, PX: centre.X, PY: centre.Y,
			DX: -c.Shift.X * (1 - p), DY: -c.Shift.Y * (1 - p)}
	case FadeOut:
		it.Opacity = 1 - p
		s := 1 + (scale-1)*p
		it.Xf = scene.Affine{SX: s, SY: s, PX: centre.X, PY: centre.Y,
			DX: c.Shift.X * p, DY: c.Shift.Y * p}
	case Write, Create:
		it.Reveal = p
	case Unwrite, Uncreate:
		it.Reveal = 1 - p
	case GrowArrow:
		pivot := obj.From
		if obj.Kind != scene.KindArrow && obj.Kind != scene.KindLine {
			pivot = obj.Bounds().Side(scene.Left)
		}
		it.Xf = scene.Affine{SX: p, SY: p, PX: pivot.X, PY: pivot.Y}
	case GrowFromCenter:
		it.Xf = scene.Affine{SX: p, SY: p, PX: centre.X, PY: centre.Y}
	case GrowFromEdge:
		pivot := obj.Bounds().Side(c.Edge)
		it.Xf = scene.Affine{SX: p, SY: p, PX: pivot.X, PY: pivot.Y}
	case Indicate:
		k := thereAndBack(p)
		s := 1 + 0.2*k
		it.Xf = scene.Affine{SX: s, SY: s, PX: centre.X, PY: centre.Y}
		it.Tint, it.TintMix = highlight, k
	case Transform:
		return morph(obj, c.To, p)
	}
	return []scene.Item{it}
}

// morph cross-fades from src to dst while both are stretched onto a box
// moving between their bounds.
func morph(src, dst *scene.Object, p float64) []scene.Item {
	if dst == nil {
		return []scene.Item{scene.Still(src)}
	}
	sb, db := src.Bounds(), dst.Bounds()
	mid := scene.RectAround(sb.Center().Lerp(db.Center(), p),
		sb.Width()+(db.Width()-sb.Width())*p,
		sb.Height()+(db.Height()-sb.Height())*p)

	from := scene.Still(src)
	from.Opacity = 1 - p
	from.Xf = fit(sb, mid)
	to := scene.Still(dst)
	to.Opacity = p
	to.Xf = fit(db, mid)
	return []scene.Item{from, to}
}

// fit maps box a onto box b; degenerate axes keep their scale.
func fit(a, b scene.Rect) scene.Affine {
	sx, sy := 1.0, 1.0
	if a.Width() > 1e-9 {
		sx = b.Width() / a.Width()
	}
	if a.Height() > 1e-9 {
		sy = b.Height() / a.Height()
	}
	if math.IsNaN(sx) || math.IsNaN(sy) {
		sx, sy = 1, 1
	}
	ac, bc := a.Center(), b.Center()
	return scene.Affine{SX: sx, SY: sy, PX: ac.X, PY: ac.Y, DX: bc.X - ac.X, DY: bc.Y - ac.Y}
}
