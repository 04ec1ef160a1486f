// Package helpers builds the reusable composites scripts refer to by name:
// boxes with centred labels, pipeline stages, brain icons, particle flows,
// bullet lists and bars. Every helper is a pure function of its arguments.
package helpers

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/gogpu/gg"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/scene2video/internal/layout"
	"github.com/ivlev/scene2video/internal/palette"
	"github.com/ivlev/scene2video/internal/scene"
)

// ErrUnknownHelper is returned by Build for names missing from the registry.
var ErrUnknownHelper = errors.New("unknown helper")

// Env carries what helpers need besides their literal arguments.
type Env struct {
	Palette palette.Palette
	Measure scene.Measurer
	// Lookup resolves already placed objects (arrow_between only).
	Lookup layout.Lookup
}

type builder func(args *yaml.Node, env Env) (*scene.Object, error)

var registry = map[string]builder{
	"labeled_box":   labeledBox,
	"pipeline_box":  pipelineBox,
	"silo":          silo,
	"brain":         brain,
	"particle_flow": particleFlow,
	"bullet_item":   bulletItem,
	"text_list":     textList,
	"box_list":      boxList,
	"bar":           bar,
	"arrow_between": arrowBetween,
}

// Build constructs a fresh composite from the named helper.
func Build(name string, args *yaml.Node, env Env) (*scene.Object, error) {
	b, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHelper, name)
	}
	if env.Measure == nil {
		env.Measure = scene.Approx{}
	}
	obj, err := b(args, env)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return obj, nil
}

// Names lists the registered helpers.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func named(name string, o *scene.Object) *scene.Object {
	o.Name = name
	return o
}

// boxSpec is shared by labeled_box, pipeline_box, silo and box_list.
type boxSpec struct {
	text        string
	color       gg.RGBA
	textColor   gg.RGBA
	width       float64
	height      float64
	corner      float64
	size        float64
	fillOpacity float64
	strokeWidth float64
	bold        bool
	maxWidth    float64
}

func (s boxSpec) build(m scene.Measurer) (*scene.Object, error) {
	label, err := scene.NewText(m, s.text, s.size, s.bold, 1, scene.Ink(s.textColor))
	if err != nil {
		return nil, err
	}
	if s.maxWidth > 0 && label.Width > s.maxWidth {
		label.Scale(s.maxWidth/label.Width, label.Center())
	}

	const pad = 0.3
	w, h := s.width, s.height
	if w == 0 {
		w = label.Width + 2*pad
	}
	if h == 0 {
		h = label.Height + 2*pad
	}
	st := scene.Filled(s.color, s.strokeWidth, s.fillOpacity)

	var frame *scene.Object
	if s.corner > 0 {
		frame, err = scene.NewRoundRect(w, h, s.corner, st)
	} else {
		frame, err = scene.NewRect(w, h, st)
	}
	if err != nil {
		return nil, err
	}
	label.MoveTo(frame.Center())
	return scene.NewGroup(named("box", frame), named("label", label)), nil
}

type labeledBoxArgs struct {
	Text        string  `yaml:"text"`
	Color       string  `yaml:"color"`
	TextColor   string  `yaml:"text_color"`
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	Corner      float64 `yaml:"corner"`
	Size        float64 `yaml:"size"`
	FillOpacity float64 `yaml:"fill_opacity"`
	StrokeWidth float64 `yaml:"stroke_width"`
	Bold        bool    `yaml:"bold"`
	MaxWidth    float64 `yaml:"max_width"`
}

func labeledBox(args *yaml.Node, env Env) (*scene.Object, error) {
	a := labeledBoxArgs{Color: "blue", TextColor: "white", Size: 24, FillOpacity: 0.2, StrokeWidth: 2}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	s := boxSpec{text: a.Text, width: a.Width, height: a.Height, corner: a.Corner, size: a.Size,
		fillOpacity: a.FillOpacity, strokeWidth: a.StrokeWidth, bold: a.Bold, maxWidth: a.MaxWidth}
	var err error
	if s.color, err = color(env.Palette, "color", a.Color); err != nil {
		return nil, err
	}
	if s.textColor, err = color(env.Palette, "text_color", a.TextColor); err != nil {
		return nil, err
	}
	return s.build(env.Measure)
}

type pipelineBoxArgs struct {
	Text    string `yaml:"text"`
	Color   string `yaml:"color"`
	Reduced bool   `yaml:"reduced"`
}

// pipelineBox uses the two fixed stage sizes of the pipeline diagrams.
func pipelineBox(args *yaml.Node, env Env) (*scene.Object, error) {
	a := pipelineBoxArgs{Color: "blue"}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	c, err := color(env.Palette, "color", a.Color)
	if err != nil {
		return nil, err
	}
	s := boxSpec{text: a.Text, color: c, textColor: c, width: 3, height: 0.8, size: 14,
		fillOpacity: 0.2, strokeWidth: 2, bold: true}
	if a.Reduced {
		s.width, s.height, s.size = 2.5, 0.6, 12
	}
	return s.build(env.Measure)
}

type siloArgs struct {
	Text  string `yaml:"text"`
	Color string `yaml:"color"`
}

func silo(args *yaml.Node, env Env) (*scene.Object, error) {
	a := siloArgs{Color: "blue"}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	c, err := color(env.Palette, "color", a.Color)
	if err != nil {
		return nil, err
	}
	s := boxSpec{text: a.Text, color: c, textColor: c, width: 2, height: 3, size: 20,
		fillOpacity: 0.2, strokeWidth: 4, bold: true}
	return s.build(env.Measure)
}

type brainArgs struct {
	Color     string  `yaml:"color"`
	FoldColor string  `yaml:"fold_color"`
	Scale     float64 `yaml:"scale"`
}

// brain draws a stylised brain: an outline, a midline and four folds.
func brain(args *yaml.Node, env Env) (*scene.Object, error) {
	a := brainArgs{Color: "orange", FoldColor: "white", Scale: 1}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.Scale <= 0 {
		return nil, fmt.Errorf("%w: scale %.2f", scene.ErrGeometry, a.Scale)
	}
	c, err := color(env.Palette, "color", a.Color)
	if err != nil {
		return nil, err
	}
	fc, err := color(env.Palette, "fold_color", a.FoldColor)
	if err != nil {
		return nil, err
	}

	outline, err := scene.NewEllipse(0.8, 0.64, scene.Outlined(c, 4))
	if err != nil {
		return nil, err
	}
	top, bottom := outline.Bounds().Side(scene.Up), outline.Bounds().Side(scene.Down)
	midline, err := scene.NewLine(top, bottom, scene.Outlined(fc, 2))
	if err != nil {
		return nil, err
	}

	folds := []struct {
		r, start, sweep float64
		at              scene.Vec
	}{
		{0.2, math.Pi / 2, math.Pi, scene.Vec{X: -0.2, Y: 0.1}},
		{0.15, math.Pi * 1.5, -math.Pi, scene.Vec{X: -0.25, Y: -0.15}},
		{0.2, math.Pi / 2, -math.Pi, scene.Vec{X: 0.2, Y: 0.1}},
		{0.15, -math.Pi / 2, math.Pi, scene.Vec{X: 0.25, Y: -0.15}},
	}
	members := []*scene.Object{named("outline", outline), named("midline", midline)}
	for i, f := range folds {
		arc, err := scene.NewArc(f.r, f.start, f.sweep, scene.Outlined(fc, 2))
		if err != nil {
			return nil, err
		}
		arc.MoveTo(f.at)
		members = append(members, named(fmt.Sprintf("fold%d", i+1), arc))
	}
	g := scene.NewGroup(members...)
	g.MoveTo(scene.Origin)
	if a.Scale != 1 {
		g.Scale(a.Scale, scene.Origin)
	}
	return g, nil
}

type particleFlowArgs struct {
	From   scene.Vec `yaml:"from"`
	To     scene.Vec `yaml:"to"`
	Count  int       `yaml:"count"`
	Radius float64   `yaml:"radius"`
	Color  string    `yaml:"color"`
}

// particleFlow spaces count dots evenly between two points.
func particleFlow(args *yaml.Node, env Env) (*scene.Object, error) {
	a := particleFlowArgs{From: scene.Left, To: scene.Right, Count: 5, Radius: 0.05, Color: "yellow"}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.Count < 1 {
		return nil, fmt.Errorf("%w: particle count %d", scene.ErrGeometry, a.Count)
	}
	c, err := color(env.Palette, "color", a.Color)
	if err != nil {
		return nil, err
	}

	dots := make([]*scene.Object, 0, a.Count)
	for i := 0; i < a.Count; i++ {
		d, err := scene.NewDot(scene.Origin, a.Radius, c)
		if err != nil {
			return nil, err
		}
		dots = append(dots, d)
	}
	layout.Spread(dots, a.From, a.To)
	return scene.NewGroup(dots...), nil
}

type bulletItemArgs struct {
	Text        string  `yaml:"text"`
	Bullet      string  `yaml:"bullet"`
	Color       string  `yaml:"color"`
	BulletColor string  `yaml:"bullet_color"`
	Size        float64 `yaml:"size"`
	Buff        float64 `yaml:"buff"`
	Bold        bool    `yaml:"bold"`
}

func bulletItem(args *yaml.Node, env Env) (*scene.Object, error) {
	a := bulletItemArgs{Bullet: "•", Color: "white", BulletColor: "yellow", Size: 24, Buff: 0.2}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	c, err := color(env.Palette, "color", a.Color)
	if err != nil {
		return nil, err
	}
	bc, err := color(env.Palette, "bullet_color", a.BulletColor)
	if err != nil {
		return nil, err
	}

	b, err := scene.NewText(env.Measure, a.Bullet, a.Size, true, 1, scene.Ink(bc))
	if err != nil {
		return nil, err
	}
	label, err := scene.NewText(env.Measure, a.Text, a.Size, a.Bold, 1, scene.Ink(c))
	if err != nil {
		return nil, err
	}
	members := []*scene.Object{named("bullet", b), named("label", label)}
	layout.Arrange(members, scene.Right, scene.Origin, a.Buff)
	return scene.NewGroup(members...), nil
}

type textListArgs struct {
	Items []string  `yaml:"items"`
	Size  float64   `yaml:"size"`
	Color string    `yaml:"color"`
	Bold  bool      `yaml:"bold"`
	Buff  float64   `yaml:"buff"`
	Align scene.Vec `yaml:"align"`
	Dir   scene.Vec `yaml:"dir"`
}

// textList stacks one text line per item; align picks the shared edge.
func textList(args *yaml.Node, env Env) (*scene.Object, error) {
	a := textListArgs{Size: 24, Color: "white", Buff: 0.3, Align: scene.Left, Dir: scene.Down}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if len(a.Items) == 0 {
		return nil, fmt.Errorf("%w: empty list", scene.ErrGeometry)
	}
	c, err := color(env.Palette, "color", a.Color)
	if err != nil {
		return nil, err
	}

	lines := make([]*scene.Object, 0, len(a.Items))
	for _, item := range a.Items {
		t, err := scene.NewText(env.Measure, item, a.Size, a.Bold, 1, scene.Ink(c))
		if err != nil {
			return nil, err
		}
		lines = append(lines, t)
	}
	layout.Arrange(lines, a.Dir, a.Align, a.Buff)
	return scene.NewGroup(lines...), nil
}

type boxListArgs struct {
	Items       []string  `yaml:"items"`
	Color       string    `yaml:"color"`
	TextColor   string    `yaml:"text_color"`
	Width       float64   `yaml:"width"`
	Height      float64   `yaml:"height"`
	Size        float64   `yaml:"size"`
	FillOpacity float64   `yaml:"fill_opacity"`
	Buff        float64   `yaml:"buff"`
	Dir         scene.Vec `yaml:"dir"`
}

func boxList(args *yaml.Node, env Env) (*scene.Object, error) {
	a := boxListArgs{Color: "blue", TextColor: "white", Width: 3, Height: 0.6, Size: 18,
		FillOpacity: 0.2, Buff: 0.2, Dir: scene.Down}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if len(a.Items) == 0 {
		return nil, fmt.Errorf("%w: empty list", scene.ErrGeometry)
	}
	s := boxSpec{width: a.Width, height: a.Height, size: a.Size, fillOpacity: a.FillOpacity,
		strokeWidth: 2, maxWidth: a.Width - 0.2}
	var err error
	if s.color, err = color(env.Palette, "color", a.Color); err != nil {
		return nil, err
	}
	if s.textColor, err = color(env.Palette, "text_color", a.TextColor); err != nil {
		return nil, err
	}

	boxes := make([]*scene.Object, 0, len(a.Items))
	for _, item := range a.Items {
		s.text = item
		b, err := s.build(env.Measure)
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, b)
	}
	layout.Arrange(boxes, a.Dir, scene.Origin, a.Buff)
	return scene.NewGroup(boxes...), nil
}

type barArgs struct {
	Value       float64 `yaml:"value"`
	Max         float64 `yaml:"max"`
	Length      float64 `yaml:"length"`
	Height      float64 `yaml:"height"`
	Color       string  `yaml:"color"`
	FillOpacity float64 `yaml:"fill_opacity"`
}

// minBar is the width drawn for a zero value so the bar still has a left
// edge to animate from.
const minBar = 0.01

// bar is a horizontal bar of width value/max*length whose left edge sits
// on x=0, so a column of bars lines up when placed with a left pivot.
func bar(args *yaml.Node, env Env) (*scene.Object, error) {
	a := barArgs{Max: 100, Length: 6, Height: 0.4, Color: "blue", FillOpacity: 0.8}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.Max <= 0 {
		return nil, fmt.Errorf("%w: bar max %.2f", scene.ErrGeometry, a.Max)
	}
	if a.Value < 0 {
		return nil, fmt.Errorf("%w: bar value %.2f", scene.ErrGeometry, a.Value)
	}
	c, err := color(env.Palette, "color", a.Color)
	if err != nil {
		return nil, err
	}

	w := math.Max(a.Value/a.Max*a.Length, minBar)
	r, err := scene.NewRect(w, a.Height, scene.Filled(c, 1, a.FillOpacity))
	if err != nil {
		return nil, err
	}
	r.Shift(scene.Vec{X: w / 2})
	return scene.NewGroup(named("bar", r)), nil
}

type arrowBetweenArgs struct {
	From        string  `yaml:"from"`
	To          string  `yaml:"to"`
	Gap         float64 `yaml:"gap"`
	Color       string  `yaml:"color"`
	StrokeWidth float64 `yaml:"stroke_width"`
}

func arrowBetween(args *yaml.Node, env Env) (*scene.Object, error) {
	a := arrowBetweenArgs{Gap: 0.1, Color: "white", StrokeWidth: 3}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if env.Lookup == nil {
		return nil, errors.New("no objects to connect")
	}
	src, err := env.Lookup(a.From)
	if err != nil {
		return nil, err
	}
	dst, err := env.Lookup(a.To)
	if err != nil {
		return nil, err
	}
	c, err := color(env.Palette, "color", a.Color)
	if err != nil {
		return nil, err
	}

	from, to := layout.Facing(src.Bounds(), dst.Bounds(), a.Gap)
	arrow, err := scene.NewArrow(from, to, 0, scene.Outlined(c, a.StrokeWidth))
	if err != nil {
		return nil, err
	}
	return scene.NewGroup(named("arrow", arrow)), nil
}
