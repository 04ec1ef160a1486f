package palette

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/gg"
)

// ErrUnknownColor is returned when a name is neither a palette entry nor a hex literal.
var ErrUnknownColor = errors.New("unknown color")

// ErrBadHex is returned for malformed "#..." literals.
var ErrBadHex = errors.New("malformed hex color")

// Palette is an immutable set of named colors. The zero value is empty but usable.
type Palette struct {
	colors map[string]gg.RGBA
}

// base mirrors the named colors the scene scripts rely on.
var base = map[string]string{
	"white":      "#FFFFFF",
	"black":      "#000000",
	"gray":       "#888888",
	"grey":       "#888888",
	"dark_gray":  "#444444",
	"light_gray": "#BBBBBB",
	"red":        "#FC6255",
	"green":      "#83C167",
	"blue":       "#58C4DD",
	"blue_c":     "#58C4DD",
	"blue_e":     "#1C758A",
	"orange":     "#FF862F",
	"yellow":     "#FFFF00",
	"gold":       "#F0AC5F",
	"purple":     "#9A72AC",
	"purple_b":   "#B189C6",
	"teal":       "#5CD0B3",
	"pink":       "#D147BD",
	"maroon":     "#C55F73",
}

// Default returns the base palette.
func Default() Palette {
	p, err := New(nil)
	if err != nil {
		// base entries are literals checked by tests
		panic(err)
	}
	return p
}

// New builds a palette from the base colors overlaid with entries.
// Entry values may reference other names already in the palette.
func New(entries map[string]string) (Palette, error) {
	colors := make(map[string]gg.RGBA, len(base)+len(entries))
	for name, hex := range base {
		c, err := ParseHex(hex)
		if err != nil {
			return Palette{}, fmt.Errorf("base color %s: %w", name, err)
		}
		colors[name] = c
	}
	p := Palette{colors: colors}
	return p.with(entries)
}

// With returns a new palette with the given entries added or replaced.
// The receiver is left unchanged.
func (p Palette) With(entries map[string]string) (Palette, error) {
	cp := make(map[string]gg.RGBA, len(p.colors)+len(entries))
	for k, v := range p.colors {
		cp[k] = v
	}
	return Palette{colors: cp}.with(entries)
}

func (p Palette) with(entries map[string]string) (Palette, error) {
	if p.colors == nil {
		p.colors = make(map[string]gg.RGBA, len(entries))
	}
	// sorted for deterministic error reporting
	pending := make([]string, 0, len(entries))
	for name := range entries {
		pending = append(pending, name)
	}
	sort.Strings(pending)

	// aliases may point at entries declared later, so resolve until no progress
	for len(pending) > 0 {
		var next []string
		var lastErr error
		for _, name := range pending {
			c, err := p.Lookup(entries[name])
			if err != nil {
				lastErr = fmt.Errorf("palette entry %s: %w", name, err)
				next = append(next, name)
				continue
			}
			p.colors[normalize(name)] = c
		}
		if len(next) == len(pending) {
			return Palette{}, lastErr
		}
		pending = next
	}
	return p, nil
}

// Lookup resolves a palette name or a hex literal.
func (p Palette) Lookup(name string) (gg.RGBA, error) {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "#") {
		return ParseHex(name)
	}
	if c, ok := p.colors[normalize(name)]; ok {
		return c, nil
	}
	return gg.RGBA{}, fmt.Errorf("%w: %q", ErrUnknownColor, name)
}

// Names lists the palette entries in sorted order.
func (p Palette) Names() []string {
	names := make([]string, 0, len(p.colors))
	for name := range p.colors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseHex validates a "#RGB", "#RRGGBB" or "#RRGGBBAA" literal before
// handing it to gg.Hex, which silently maps garbage to black.
func ParseHex(s string) (gg.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(h) {
	case 3, 4, 6, 8:
	default:
		return gg.RGBA{}, fmt.Errorf("%w: %q", ErrBadHex, s)
	}
	for _, r := range h {
		if !isHexDigit(r) {
			return gg.RGBA{}, fmt.Errorf("%w: %q", ErrBadHex, s)
		}
	}
	return gg.Hex(h), nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
