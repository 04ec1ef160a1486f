package stage

import (
	"github.com/ivlev/scene2video/internal/effects"
	"github.com/ivlev/scene2video/internal/scene"
)

// Shot is one play or wait call: the untouched objects plus the clips
// animated over Frames frames.
type Shot struct {
	Static []scene.Item
	Clips  []effects.Clip
	Frames int
}

// Frame builds frame k (0-based) of the shot. The last frame shows the
// clips completed.
func (s Shot) Frame(k int) scene.Frame {
	items := append([]scene.Item(nil), s.Static...)
	alpha := float64(k+1) / float64(s.Frames)
	for _, c := range s.Clips {
		items = append(items, c.Items(alpha)...)
	}
	return scene.Frame{Items: items}
}

// Section is the recorded output of one sub-scene.
type Section struct {
	Index int
	Title string
	Shots []Shot
}

// FrameCount is the total number of frames in the section.
func (s Section) FrameCount() int {
	n := 0
	for _, sh := range s.Shots {
		n += sh.Frames
	}
	return n
}

// Duration in seconds at fps.
func (s Section) Duration(fps int) float64 {
	return float64(s.FrameCount()) / float64(fps)
}

// Each calls fn for every frame in order and stops at the first error.
func (s Section) Each(fn func(i int, f scene.Frame) error) error {
	i := 0
	for _, sh := range s.Shots {
		for k := 0; k < sh.Frames; k++ {
			if err := fn(i, sh.Frame(k)); err != nil {
				return err
			}
			i++
		}
	}
	return nil
}

// Busiest returns the frame with the most objects on screen.
func (s Section) Busiest() scene.Frame {
	var best scene.Frame
	bestWeight := -1
	for _, sh := range s.Shots {
		f := sh.Frame(sh.Frames - 1)
		if w := f.Weight(); w > bestWeight {
			best, bestWeight = f, w
		}
	}
	return best
}

// Timeline is the Stage that keeps every section's shots for rendering.
type Timeline struct {
	FPS      int
	Sections []Section

	canvas canvas
}

// NewTimeline creates an empty timeline at fps frames per second.
func NewTimeline(fps int) *Timeline {
	return &Timeline{FPS: fps}
}

var _ Stage = (*Timeline)(nil)

func (t *Timeline) current() *Section {
	return &t.Sections[len(t.Sections)-1]
}

func (t *Timeline) BeginSection(title string) error {
	if err := t.canvas.begin(title); err != nil {
		return err
	}
	t.Sections = append(t.Sections, Section{Index: len(t.Sections), Title: title})
	return nil
}

func (t *Timeline) Add(id string, obj *scene.Object) error {
	if err := t.canvas.guard(); err != nil {
		return err
	}
	return t.canvas.add(id, obj)
}

func (t *Timeline) Remove(id string) error {
	if err := t.canvas.guard(); err != nil {
		return err
	}
	return t.canvas.remove(id)
}

func (t *Timeline) Play(clips []effects.Clip, runTime float64) error {
	if err := t.canvas.guard(); err != nil {
		return err
	}
	if len(clips) == 0 {
		return ErrEmptyPlay
	}
	if err := t.canvas.check(clips); err != nil {
		return err
	}
	sec := t.current()
	sec.Shots = append(sec.Shots, Shot{
		Static: t.canvas.statics(clips),
		Clips:  clips,
		Frames: FrameCount(runTime, t.FPS),
	})
	t.canvas.settle(clips)
	return nil
}

func (t *Timeline) Wait(seconds float64) error {
	if err := t.canvas.guard(); err != nil {
		return err
	}
	sec := t.current()
	sec.Shots = append(sec.Shots, Shot{
		Static: t.canvas.statics(nil),
		Frames: FrameCount(seconds, t.FPS),
	})
	return nil
}

func (t *Timeline) Clear() error {
	if err := t.canvas.guard(); err != nil {
		return err
	}
	t.canvas.clear()
	return nil
}

// EndSection pads a section that produced no frames with one frame, so
// that every section can be encoded.
func (t *Timeline) EndSection() ([]string, error) {
	if err := t.canvas.guard(); err != nil {
		return nil, err
	}
	if sec := t.current(); sec.FrameCount() == 0 {
		sec.Shots = append(sec.Shots, Shot{Static: t.canvas.statics(nil), Frames: 1})
	}
	return t.canvas.end()
}

func (t *Timeline) Visible() []string {
	return t.canvas.live()
}

// FrameCount is the total over all sections.
func (t *Timeline) FrameCount() int {
	n := 0
	for _, s := range t.Sections {
		n += s.FrameCount()
	}
	return n
}
