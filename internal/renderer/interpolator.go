package renderer

import (
	"github.com/gogpu/gg"
)

// paint resolves the colour an item is drawn with: the base colour pulled
// toward the tint, then faded by opacity.
func paint(base, tint gg.RGBA, mix, opacity float64) gg.RGBA {
	c := base
	if mix > 0 {
		c = mixRGBA(base, tint, mix)
	}
	c.A *= clamp01(opacity)
	return c
}

// gradientAt samples evenly spaced colour stops at t in [0, 1].
func gradientAt(stops []gg.RGBA, t float64) gg.RGBA {
	switch len(stops) {
	case 0:
		return gg.RGBA{}
	case 1:
		return stops[0]
	}
	t = clamp01(t)
	pos := t * float64(len(stops)-1)
	i := int(pos)
	if i >= len(stops)-1 {
		return stops[len(stops)-1]
	}
	return mixRGBA(stops[i], stops[i+1], pos-float64(i))
}

// mixRGBA performs linear interpolation between two colours
func mixRGBA(a, b gg.RGBA, t float64) gg.RGBA {
	return gg.RGBA{
		R: lerp(a.R, b.R, t),
		G: lerp(a.G, b.G, t),
		B: lerp(a.B, b.B, t),
		A: lerp(a.A, b.A, t),
	}
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
