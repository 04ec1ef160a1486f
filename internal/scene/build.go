package scene

import (
	"math"
	"unicode/utf8"

	"github.com/gogpu/gg"
)

// Measurer reports the size of a single line of text in scene units.
type Measurer interface {
	Measure(text string, size float64, bold bool) (w, h float64)
}

// EmUnits converts a font size in points to scene units.
func EmUnits(size float64) float64 { return size / 64 }

// Approx is a font-free measurer for validation runs.
type Approx struct{}

// Measure estimates glyph advance at 0.55 em and line height at 1.2 em.
func (Approx) Measure(text string, size float64, bold bool) (float64, float64) {
	em := EmUnits(size)
	adv := 0.55
	if bold {
		adv = 0.6
	}
	return float64(utf8.RuneCountInString(text)) * em * adv, em * 1.2
}

// Outlined returns a stroke-only style.
func Outlined(c gg.RGBA, width float64) Style {
	return Style{Stroke: c, Fill: c, StrokeWidth: width}
}

// Filled returns a style with a translucent fill of the stroke colour.
func Filled(c gg.RGBA, width, opacity float64) Style {
	return Style{Stroke: c, Fill: c, StrokeWidth: width, FillOpacity: opacity}
}

// Ink returns a text style.
func Ink(c gg.RGBA) Style {
	return Style{Fill: c, FillOpacity: 1}
}

func checked(o *Object) (*Object, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func NewRect(w, h float64, st Style) (*Object, error) {
	return checked(&Object{Kind: KindRect, Width: w, Height: h, Style: st})
}

func NewRoundRect(w, h, r float64, st Style) (*Object, error) {
	return checked(&Object{Kind: KindRoundRect, Width: w, Height: h, Radius: r, Style: st})
}

func NewCircle(r float64, st Style) (*Object, error) {
	return checked(&Object{Kind: KindCircle, Radius: r, Style: st})
}

func NewEllipse(w, h float64, st Style) (*Object, error) {
	return checked(&Object{Kind: KindEllipse, Width: w, Height: h, Style: st})
}

// NewArc builds an arc of a circle centred on the origin. Angles are in radians.
func NewArc(r, start, sweep float64, st Style) (*Object, error) {
	return checked(&Object{Kind: KindArc, Radius: r, StartAngle: start, Angle: sweep, Style: st})
}

func NewSector(r, start, sweep float64, st Style) (*Object, error) {
	return checked(&Object{Kind: KindSector, Radius: r, StartAngle: start, Angle: sweep, Style: st})
}

func NewLine(from, to Vec, st Style) (*Object, error) {
	return checked(&Object{Kind: KindLine, From: from, To: to, Style: st})
}

// NewArrow builds an arrow from one point to another, pulled in by buff at
// both ends. The tip is capped at a quarter of the drawn length.
func NewArrow(from, to Vec, buff float64, st Style) (*Object, error) {
	dir := to.Sub(from)
	l := dir.Len()
	if l > 2*buff {
		u := dir.Unit()
		from = from.Add(u.Mul(buff))
		to = to.Sub(u.Mul(buff))
		l -= 2 * buff
	}
	tip := math.Min(0.35, 0.25*l)
	return checked(&Object{Kind: KindArrow, From: from, To: to, Tip: tip, Style: st})
}

func NewDot(at Vec, r float64, c gg.RGBA) (*Object, error) {
	return checked(&Object{Kind: KindDot, Pos: at, Radius: r, Style: Style{Stroke: c, Fill: c, FillOpacity: 1}})
}

// NewText builds a text label centred on the origin. Multi-line text uses
// spacing as a multiple of the line height.
func NewText(m Measurer, s string, size float64, bold bool, spacing float64, st Style) (*Object, error) {
	return newLabel(KindText, m, s, size, bold, spacing, st)
}

// NewMath builds a formula from its plain-text rendering.
func NewMath(m Measurer, s string, size float64, st Style) (*Object, error) {
	return newLabel(KindMath, m, s, size, false, 1, st)
}

func newLabel(kind Kind, m Measurer, s string, size float64, bold bool, spacing float64, st Style) (*Object, error) {
	if spacing <= 0 {
		spacing = 1
	}
	o := &Object{Kind: kind, Text: s, FontSize: size, Bold: bold, LineSpacing: spacing, Style: st}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	lines := o.Lines()
	var lineH float64
	for _, line := range lines {
		w, h := m.Measure(line, size, bold)
		o.Width = math.Max(o.Width, w)
		lineH = math.Max(lineH, h)
	}
	o.Height = lineH * (1 + float64(len(lines)-1)*spacing)
	return o, nil
}

// NewImage builds a picture placeholder of the given size; pixels are
// fetched from source at render time.
func NewImage(source string, page int, w, h float64) (*Object, error) {
	return checked(&Object{Kind: KindImage, Source: source, Page: page, Width: w, Height: h})
}

// NewQR builds a square QR code of side size encoding payload.
func NewQR(payload string, size float64, c gg.RGBA) (*Object, error) {
	return checked(&Object{Kind: KindQR, Text: payload, Width: size, Height: size, Style: Ink(c)})
}

// NewGroup collects members into a composite. Members are used as is.
func NewGroup(members ...*Object) *Object {
	return &Object{Kind: KindGroup, Children: members}
}
