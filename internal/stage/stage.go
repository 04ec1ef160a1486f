// Package stage holds the canvas state the director drives: which objects
// are live, in which order, and how many frames each play or wait emits.
package stage

import (
	"errors"
	"fmt"
	"math"

	"github.com/ivlev/scene2video/internal/effects"
	"github.com/ivlev/scene2video/internal/scene"
)

var (
	// ErrNotOnCanvas is returned when an animation targets an object that is not live.
	ErrNotOnCanvas = errors.New("object is not on the canvas")
	// ErrAlreadyOnCanvas is returned when an object enters while it is live.
	ErrAlreadyOnCanvas = errors.New("object is already on the canvas")
	// ErrNoSection is returned for calls made outside BeginSection/EndSection.
	ErrNoSection = errors.New("no open section")
	// ErrEmptyPlay is returned for a play call without animations.
	ErrEmptyPlay = errors.New("play without animations")
)

// Stage is the rendering collaborator driven by the director.
// Every call completes the animation before returning.
type Stage interface {
	BeginSection(title string) error
	Add(id string, obj *scene.Object) error
	Remove(id string) error
	Play(clips []effects.Clip, runTime float64) error
	Wait(seconds float64) error
	Clear() error
	// EndSection closes the section and returns the ids still on the canvas.
	EndSection() ([]string, error)
	Visible() []string
}

// FrameCount is the number of frames a play or wait of the given length
// emits: rounded up and at least one, so every statement is visible in
// the output.
func FrameCount(seconds float64, fps int) int {
	// 1e-9 absorbs float noise such as 0.1*30 = 3.0000000000000004
	n := int(math.Ceil(seconds*float64(fps) - 1e-9))
	if n < 1 {
		return 1
	}
	return n
}

// canvas is the ordered set of live objects.
type canvas struct {
	open  bool
	title string
	order []string
	objs  map[string]*scene.Object
}

func (c *canvas) begin(title string) error {
	if c.open {
		return fmt.Errorf("section %q is still open", c.title)
	}
	c.open, c.title = true, title
	c.order, c.objs = nil, make(map[string]*scene.Object)
	return nil
}

func (c *canvas) end() ([]string, error) {
	if !c.open {
		return nil, ErrNoSection
	}
	left := c.live()
	c.open = false
	return left, nil
}

func (c *canvas) guard() error {
	if !c.open {
		return ErrNoSection
	}
	return nil
}

func (c *canvas) has(id string) bool {
	_, ok := c.objs[id]
	return ok
}

func (c *canvas) add(id string, obj *scene.Object) error {
	if c.has(id) {
		return fmt.Errorf("%w: %q", ErrAlreadyOnCanvas, id)
	}
	c.order = append(c.order, id)
	c.objs[id] = obj
	return nil
}

func (c *canvas) remove(id string) error {
	if !c.has(id) {
		return fmt.Errorf("%w: %q", ErrNotOnCanvas, id)
	}
	delete(c.objs, id)
	for i, o := range c.order {
		if o == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (c *canvas) clear() {
	c.order, c.objs = nil, make(map[string]*scene.Object)
}

func (c *canvas) live() []string {
	return append([]string(nil), c.order...)
}

// check verifies that entering objects are absent and every other clip
// targets a live object.
func (c *canvas) check(clips []effects.Clip) error {
	entering := make(map[string]bool)
	for _, cl := range clips {
		if cl.Kind.Enters() {
			if c.has(cl.ID) || entering[cl.ID] {
				return fmt.Errorf("%s: %w: %q", cl.Kind, ErrAlreadyOnCanvas, cl.ID)
			}
			entering[cl.ID] = true
			continue
		}
		if cl.Kind == effects.Transform && cl.ToID != cl.ID {
			if c.has(cl.ToID) || entering[cl.ToID] {
				return fmt.Errorf("%s: %w: %q", cl.Kind, ErrAlreadyOnCanvas, cl.ToID)
			}
			entering[cl.ToID] = true
		}
		if !c.has(cl.ID) {
			return fmt.Errorf("%s: %w: %q", cl.Kind, ErrNotOnCanvas, cl.ID)
		}
	}
	return nil
}

// statics returns the live objects not animated by clips.
func (c *canvas) statics(clips []effects.Clip) []scene.Item {
	busy := make(map[string]bool, len(clips))
	for _, cl := range clips {
		busy[cl.ID] = true
		if cl.ToID != "" {
			busy[cl.ToID] = true
		}
	}
	items := make([]scene.Item, 0, len(c.order))
	for _, id := range c.order {
		if !busy[id] {
			items = append(items, scene.Still(c.objs[id]))
		}
	}
	return items
}

// settle applies the end state of clips to the canvas. An object animated
// into a new state under its own id keeps its place in the draw order.
func (c *canvas) settle(clips []effects.Clip) {
	for _, cl := range clips {
		switch {
		case cl.Kind == effects.Transform && cl.ToID == cl.ID:
			c.objs[cl.ID] = cl.To
		case cl.Kind == effects.Transform:
			_ = c.remove(cl.ID)
			_ = c.add(cl.ToID, cl.To)
		case cl.Kind.Enters():
			_ = c.add(cl.ID, cl.Obj)
		case cl.Kind.Leaves():
			_ = c.remove(cl.ID)
		}
	}
}
