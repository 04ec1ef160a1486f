package stage

import (
	"fmt"
	"strings"

	"github.com/ivlev/scene2video/internal/effects"
	"github.com/ivlev/scene2video/internal/scene"
)

// Call is one recorded stage call.
type Call struct {
	Section string
	Op      string
	Detail  string
	Frames  int
}

func (c Call) String() string {
	return fmt.Sprintf("[%s] %s %s (%d frames)", c.Section, c.Op, c.Detail, c.Frames)
}

// Recorder is a stage that renders nothing and keeps the call log.
// It runs scripts without fonts, pixels or ffmpeg.
type Recorder struct {
	FPS      int
	Calls    []Call
	Sections []string

	canvas canvas
}

// NewRecorder creates a recorder counting frames at fps.
func NewRecorder(fps int) *Recorder {
	return &Recorder{FPS: fps}
}

var _ Stage = (*Recorder)(nil)

func (r *Recorder) log(op, detail string, frames int) {
	r.Calls = append(r.Calls, Call{Section: r.canvas.title, Op: op, Detail: detail, Frames: frames})
}

func (r *Recorder) BeginSection(title string) error {
	if err := r.canvas.begin(title); err != nil {
		return err
	}
	r.Sections = append(r.Sections, title)
	r.log("begin", title, 0)
	return nil
}

func (r *Recorder) Add(id string, obj *scene.Object) error {
	if err := r.canvas.guard(); err != nil {
		return err
	}
	if err := r.canvas.add(id, obj); err != nil {
		return err
	}
	r.log("add", id, 0)
	return nil
}

func (r *Recorder) Remove(id string) error {
	if err := r.canvas.guard(); err != nil {
		return err
	}
	if err := r.canvas.remove(id); err != nil {
		return err
	}
	r.log("remove", id, 0)
	return nil
}

func (r *Recorder) Play(clips []effects.Clip, runTime float64) error {
	if err := r.canvas.guard(); err != nil {
		return err
	}
	if len(clips) == 0 {
		return ErrEmptyPlay
	}
	if err := r.canvas.check(clips); err != nil {
		return err
	}
	parts := make([]string, 0, len(clips))
	for _, c := range clips {
		if c.Kind == effects.Transform {
			parts = append(parts, fmt.Sprintf("%s(%s->%s)", c.Kind, c.ID, c.ToID))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s(%s)", c.Kind, c.ID))
	}
	r.log("play", strings.Join(parts, " "), FrameCount(runTime, r.FPS))
	r.canvas.settle(clips)
	return nil
}

func (r *Recorder) Wait(seconds float64) error {
	if err := r.canvas.guard(); err != nil {
		return err
	}
	r.log("wait", fmt.Sprintf("%.2fs", seconds), FrameCount(seconds, r.FPS))
	return nil
}

func (r *Recorder) Clear() error {
	if err := r.canvas.guard(); err != nil {
		return err
	}
	r.canvas.clear()
	r.log("clear", "", 0)
	return nil
}

// EndSection records one padding frame for a section that emitted none,
// as the Timeline does.
func (r *Recorder) EndSection() ([]string, error) {
	title := r.canvas.title
	left, err := r.canvas.end()
	if err != nil {
		return nil, err
	}
	frames := 0
	if r.sectionFrames(title) == 0 {
		frames = 1
	}
	r.Calls = append(r.Calls, Call{Section: title, Op: "end", Detail: strings.Join(left, ","), Frames: frames})
	return left, nil
}

// sectionFrames counts the frames of the most recent section with title.
func (r *Recorder) sectionFrames(title string) int {
	n := 0
	for i := len(r.Calls) - 1; i >= 0; i-- {
		c := r.Calls[i]
		if c.Op == "begin" && c.Section == title {
			break
		}
		n += c.Frames
	}
	return n
}

func (r *Recorder) Visible() []string {
	return r.canvas.live()
}

// Frames is the number of frames rendered so far.
func (r *Recorder) Frames() int {
	n := 0
	for _, c := range r.Calls {
		n += c.Frames
	}
	return n
}

// Ops returns the recorded operations of a section, or of all sections
// when section is empty.
func (r *Recorder) Ops(section string) []string {
	var out []string
	for _, c := range r.Calls {
		if section == "" || c.Section == section {
			out = append(out, c.Op)
		}
	}
	return out
}
