package renderer

import (
	"fmt"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ivlev/scene2video/internal/scene"
)

// refPixels is the pixel size measuring faces are built at.
const refPixels = 64.0

type fontStyle int

const (
	styleRegular fontStyle = iota
	styleBold
	styleMath
)

var (
	sourcesOnce sync.Once
	sources     [3]*text.FontSource
	sourcesErr  error
)

// loadSources parses the embedded Go fonts once per process.
func loadSources() ([3]*text.FontSource, error) {
	sourcesOnce.Do(func() {
		for i, data := range [][]byte{goregular.TTF, gobold.TTF, goitalic.TTF} {
			src, err := text.NewFontSource(data)
			if err != nil {
				sourcesErr = fmt.Errorf("parse font %d: %w", i, err)
				return
			}
			sources[i] = src
		}
	})
	return sources, sourcesErr
}

func styleOf(o *scene.Object) fontStyle {
	switch {
	case o.Kind == scene.KindMath:
		return styleMath
	case o.Bold:
		return styleBold
	}
	return styleRegular
}

type faceKey struct {
	style fontStyle
	px    float64
}

// faces caches sized faces. Not safe for concurrent use; each canvas owns one.
type faces struct {
	src   [3]*text.FontSource
	cache map[faceKey]text.Face
}

func newFaces() (*faces, error) {
	src, err := loadSources()
	if err != nil {
		return nil, err
	}
	return &faces{src: src, cache: make(map[faceKey]text.Face)}, nil
}

func (f *faces) get(style fontStyle, px float64) text.Face {
	// quarter-pixel steps keep the cache small during scale animations
	k := faceKey{style: style, px: float64(int(px*4+0.5)) / 4}
	if face, ok := f.cache[k]; ok {
		return face
	}
	face := f.src[style].Face(k.px)
	f.cache[k] = face
	return face
}

// FontMeasurer measures text with the same faces the renderer draws with.
type FontMeasurer struct {
	mu    sync.Mutex
	faces *faces
}

// NewFontMeasurer loads the embedded fonts.
func NewFontMeasurer() (*FontMeasurer, error) {
	f, err := newFaces()
	if err != nil {
		return nil, err
	}
	return &FontMeasurer{faces: f}, nil
}

var _ scene.Measurer = (*FontMeasurer)(nil)

// Measure returns the extent of one line in scene units.
func (m *FontMeasurer) Measure(s string, size float64, bold bool) (float64, float64) {
	style := styleRegular
	if bold {
		style = styleBold
	}
	m.mu.Lock()
	w, h := text.Measure(s, m.faces.get(style, refPixels))
	m.mu.Unlock()
	em := scene.EmUnits(size)
	return w / refPixels * em, h / refPixels * em
}
