package director

import (
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/gg"

	"github.com/ivlev/scene2video/internal/helpers"
	"github.com/ivlev/scene2video/internal/layout"
	"github.com/ivlev/scene2video/internal/scene"
)

// Shape defaults in scene units.
const (
	defaultStroke   = 4.0
	defaultFontSize = 36.0
	defaultDot      = 0.08
	defaultArrowGap = 0.25
	defaultQR       = 2.0
)

// build constructs one top-level object of the section and registers it.
func (r *run) build(spec ObjectSpec) error {
	if len(spec.Members) > 0 {
		return r.buildMembers(spec)
	}
	obj, err := r.construct(spec)
	if err != nil {
		return fmt.Errorf("object %q: %w", spec.ID, err)
	}
	r.built[spec.ID] = obj
	return nil
}

// buildMembers makes a layout group out of objects built earlier. The
// group moves its members but never goes on the canvas itself: animating
// it animates the members.
func (r *run) buildMembers(spec ObjectSpec) error {
	members := make([]*scene.Object, 0, len(spec.Members))
	for _, id := range spec.Members {
		obj, err := r.lookup(id)
		if err != nil {
			return fmt.Errorf("group %q: %w", spec.ID, err)
		}
		members = append(members, obj)
	}
	g := scene.NewGroup(members...)
	g.Name = spec.ID
	if err := r.arrange(g, spec); err != nil {
		return fmt.Errorf("group %q: %w", spec.ID, err)
	}
	if err := r.place(g, spec.Place); err != nil {
		return fmt.Errorf("group %q: %w", spec.ID, err)
	}
	r.built[spec.ID] = g
	r.groups[spec.ID] = spec.Members
	return nil
}

func (r *run) construct(spec ObjectSpec) (*scene.Object, error) {
	var obj *scene.Object
	var err error
	if spec.Helper != "" {
		obj, err = helpers.Build(spec.Helper, spec.Args, helpers.Env{
			Palette: r.d.Palette,
			Measure: r.d.Measure,
			Lookup:  r.lookup,
		})
	} else {
		obj, err = r.primitive(spec)
	}
	if err != nil {
		return nil, err
	}
	obj.Name = spec.ID

	if spec.Scale != 0 {
		if spec.Scale < 0 {
			return nil, fmt.Errorf("%w: scale %.2f", scene.ErrGeometry, spec.Scale)
		}
		obj.Scale(spec.Scale, obj.Center())
	}
	if err := r.arrange(obj, spec); err != nil {
		return nil, err
	}
	if err := r.place(obj, spec.Place); err != nil {
		return nil, err
	}
	return obj, nil
}

func (r *run) kindOf(spec ObjectSpec) scene.Kind {
	switch {
	case spec.Kind != "":
		return scene.Kind(spec.Kind)
	case spec.Math != "":
		return scene.KindMath
	case spec.Text != "":
		return scene.KindText
	case len(spec.Children) > 0:
		return scene.KindGroup
	case spec.Payload != "":
		return scene.KindQR
	}
	return ""
}

func (r *run) primitive(spec ObjectSpec) (*scene.Object, error) {
	color, err := r.d.Palette.Lookup(orDefault(spec.Color, "white"))
	if err != nil {
		return nil, err
	}
	st := scene.Style{Stroke: color, Fill: color, StrokeWidth: defaultStroke}
	if spec.Fill != "" {
		if st.Fill, err = r.d.Palette.Lookup(spec.Fill); err != nil {
			return nil, err
		}
	}
	if spec.FillOpacity != nil {
		st.FillOpacity = *spec.FillOpacity
	}
	if spec.StrokeWidth != nil {
		st.StrokeWidth = *spec.StrokeWidth
	}

	switch kind := r.kindOf(spec); kind {
	case scene.KindRect:
		return scene.NewRect(spec.Width, spec.Height, st)
	case scene.KindRoundRect:
		return scene.NewRoundRect(spec.Width, spec.Height, spec.Corner, st)
	case scene.KindCircle:
		return scene.NewCircle(spec.Radius, st)
	case scene.KindEllipse:
		return scene.NewEllipse(spec.Width, spec.Height, st)
	case scene.KindArc:
		return scene.NewArc(spec.Radius, rad(spec.StartAngle), rad(spec.Angle), st)
	case scene.KindSector:
		if spec.FillOpacity == nil {
			st.FillOpacity = 1
		}
		return scene.NewSector(spec.Radius, rad(spec.StartAngle), rad(spec.Angle), st)
	case scene.KindLine, scene.KindArrow:
		if spec.From == nil || spec.To == nil {
			return nil, fmt.Errorf("%w: %s needs from and to", scene.ErrGeometry, kind)
		}
		from, err := r.point(*spec.From)
		if err != nil {
			return nil, err
		}
		to, err := r.point(*spec.To)
		if err != nil {
			return nil, err
		}
		if kind == scene.KindLine {
			return scene.NewLine(from, to, st)
		}
		gap := defaultArrowGap
		if spec.Buff != nil {
			gap = *spec.Buff
		}
		return scene.NewArrow(from, to, gap, st)
	case scene.KindDot:
		return scene.NewDot(scene.Origin, orDefaultF(spec.Radius, defaultDot), color)
	case scene.KindText, scene.KindMath:
		ink := scene.Ink(color)
		for _, name := range spec.Gradient {
			c, err := r.d.Palette.Lookup(name)
			if err != nil {
				return nil, err
			}
			ink.Gradient = append(ink.Gradient, c)
		}
		size := orDefaultF(spec.Size, defaultFontSize)
		var obj *scene.Object
		if kind == scene.KindMath {
			obj, err = scene.NewMath(r.d.Measure, spec.Math, size, ink)
		} else {
			obj, err = scene.NewText(r.d.Measure, spec.Text, size, spec.Bold, spec.LineSpacing, ink)
		}
		if err != nil {
			return nil, err
		}
		if spec.MaxWidth > 0 && obj.Width > spec.MaxWidth {
			obj.Scale(spec.MaxWidth/obj.Width, obj.Center())
		}
		return obj, nil
	case scene.KindImage:
		return r.image(spec)
	case scene.KindQR:
		return scene.NewQR(spec.Payload, orDefaultF(spec.Width, defaultQR), color)
	case scene.KindGroup:
		members := make([]*scene.Object, 0, len(spec.Children))
		for i, child := range spec.Children {
			c, err := r.construct(child)
			if err != nil {
				return nil, fmt.Errorf("member %d: %w", i, err)
			}
			members = append(members, c)
		}
		return scene.NewGroup(members...), nil
	case "":
		return nil, fmt.Errorf("%w: cannot tell what to build", scene.ErrGeometry)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", scene.ErrGeometry, kind)
	}
}

// image sizes a picture from its width and the source aspect ratio when
// only one side is given.
func (r *run) image(spec ObjectSpec) (*scene.Object, error) {
	w, h := spec.Width, spec.Height
	if (w == 0 || h == 0) && r.d.Images != nil {
		pw, ph, err := r.d.Images.Size(spec.Source, spec.Page)
		if err != nil {
			return nil, err
		}
		if pw <= 0 || ph <= 0 {
			return nil, fmt.Errorf("%w: image %s is empty", scene.ErrGeometry, spec.Source)
		}
		switch {
		case w == 0 && h == 0:
			h = 4
			w = h * float64(pw) / float64(ph)
		case w == 0:
			w = h * float64(pw) / float64(ph)
		default:
			h = w * float64(ph) / float64(pw)
		}
	}
	return scene.NewImage(spec.Source, spec.Page, w, h)
}

func (r *run) arrange(obj *scene.Object, spec ObjectSpec) error {
	members := obj.Children
	switch {
	case spec.Arrange != nil:
		if spec.Arrange.Dir == (scene.Vec{}) {
			return fmt.Errorf("%w: arrange without direction", layout.ErrPlacement)
		}
		buff := layout.DefaultBuff
		if spec.Arrange.Buff != nil {
			buff = *spec.Arrange.Buff
		}
		layout.Arrange(members, spec.Arrange.Dir, spec.Arrange.Align, buff)
	case spec.Grid != nil:
		g := spec.Grid
		h, v := orDefaultF(g.HBuff, g.Buff), orDefaultF(g.VBuff, g.Buff)
		return layout.Grid(members, g.Rows, g.Cols, h, v)
	case spec.Ring != nil:
		layout.Ring(members, spec.Ring.Radius, spec.Ring.Start)
	case spec.Spread != nil:
		layout.Spread(members, spec.Spread.From, spec.Spread.To)
	}
	return nil
}

func (r *run) place(obj *scene.Object, p *PlaceSpec) error {
	if p == nil {
		return nil
	}
	return layout.Place(obj, p.placement(), r.lookup, r.d.Frame)
}

func (p *PlaceSpec) placement() layout.Placement {
	pl := layout.Placement{
		CenterOn: p.CenterOn,
		NextTo:   p.NextTo,
		Dir:      p.Dir,
		Align:    p.Align,
		Edge:     p.Edge,
		Buff:     p.Buff,
		Pivot:    p.Pivot,
		Offset:   p.Shift,
	}
	if p.At != nil {
		at := *p.At
		pl.At = &at
	}
	return pl
}

// point resolves a line or arrow endpoint.
func (r *run) point(p Point) (scene.Vec, error) {
	if p.At != nil {
		return *p.At, nil
	}
	obj, err := r.lookup(p.Of)
	if err != nil {
		return scene.Vec{}, err
	}
	return obj.Bounds().Side(p.Side).Add(p.Offset), nil
}

// lookup resolves "id" or "id.member.path" among the objects built so far.
func (r *run) lookup(ref string) (*scene.Object, error) {
	id, path, nested := strings.Cut(ref, ".")
	obj, ok := r.built[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownObject, ref)
	}
	if !nested {
		return obj, nil
	}
	child, err := obj.Child(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnknownObject, ref, err)
	}
	return child, nil
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orDefaultF(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// recolor sets every paint of obj and its members to c.
func recolor(obj *scene.Object, c gg.RGBA) {
	obj.Walk(func(o *scene.Object) {
		o.Style.Stroke, o.Style.Fill, o.Style.Gradient = c, c, nil
	})
}
