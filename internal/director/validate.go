package director

import (
	"context"

	"github.com/ivlev/scene2video/internal/stage"
)

// Fallback render settings for scripts that leave them unset.
const (
	DefaultWidth  = 1920
	DefaultHeight = 1080
	DefaultFPS    = 30
)

// Resolution returns the script's pixel size and frame rate with defaults filled in.
func (s *Script) Resolution() (int, int, int) {
	w, h, fps := s.Width, s.Height, s.FPS
	if w == 0 || h == 0 {
		w, h = DefaultWidth, DefaultHeight
	}
	if fps == 0 {
		fps = DefaultFPS
	}
	return w, h, fps
}

// Validate runs the script against the recording stage. It returns the
// call log and the layout warnings collected on the way.
func Validate(ctx context.Context, script *Script) (*stage.Recorder, []string, error) {
	w, h, fps := script.Resolution()
	d, err := NewDirector(script, w, h, nil)
	if err != nil {
		return nil, nil, err
	}
	d.Lint = true

	rec := stage.NewRecorder(fps)
	if err := d.Run(ctx, script, rec); err != nil {
		return rec, d.Warnings, err
	}
	return rec, d.Warnings, nil
}
