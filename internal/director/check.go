package director

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrScript marks a structurally invalid script.
	ErrScript = errors.New("invalid script")
	// ErrUnknownObject is returned for references to ids not built in the section.
	ErrUnknownObject = errors.New("unknown object")
	// ErrRetired is returned when an object is used again after leaving the canvas.
	ErrRetired = errors.New("object already removed")
	// ErrLeftover is returned when a section ends with objects still on the canvas.
	ErrLeftover = errors.New("canvas not empty at end of section")
)

// reserved target name for every live object
const allTarget = "all"

// Check validates what can be validated without building objects.
func (s *Script) Check() error {
	if s.Name == "" {
		return fmt.Errorf("%w: missing name", ErrScript)
	}
	if len(s.Sections) == 0 {
		return fmt.Errorf("%w: %s has no sections", ErrScript, s.Name)
	}
	if s.Width < 0 || s.Height < 0 || s.FPS < 0 {
		return fmt.Errorf("%w: negative resolution or frame rate", ErrScript)
	}
	for i, sec := range s.Sections {
		if strings.TrimSpace(sec.Title) == "" {
			return fmt.Errorf("%w: section %d has no title", ErrScript, i+1)
		}
		if err := sec.check(); err != nil {
			return fmt.Errorf("section %q: %w", sec.Title, err)
		}
	}
	return nil
}

func (sec *Section) check() error {
	seen := make(map[string]bool)
	var walk func(specs []ObjectSpec, top bool) error
	walk = func(specs []ObjectSpec, top bool) error {
		for _, o := range specs {
			if top && o.ID == "" {
				return fmt.Errorf("%w: object without id", ErrScript)
			}
			if o.ID != "" {
				if o.ID == allTarget || strings.Contains(o.ID, ".") {
					return fmt.Errorf("%w: reserved id %q", ErrScript, o.ID)
				}
				if top {
					if seen[o.ID] {
						return fmt.Errorf("%w: duplicate id %q", ErrScript, o.ID)
					}
					seen[o.ID] = true
				}
			}
			if err := walk(o.Children, false); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(sec.Objects, true); err != nil {
		return err
	}

	if len(sec.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrScript)
	}
	for i, st := range sec.Steps {
		if len(st.Play) == 0 && st.Wait == 0 && len(st.Add) == 0 && len(st.Remove) == 0 && !st.Clear {
			return fmt.Errorf("%w: step %d does nothing", ErrScript, i+1)
		}
		if st.RunTime < 0 || st.Wait < 0 || st.Lag < 0 {
			return fmt.Errorf("%w: step %d has negative timing", ErrScript, i+1)
		}
		for _, a := range st.Play {
			if a.Do == "" {
				return fmt.Errorf("%w: step %d: action without 'do'", ErrScript, i+1)
			}
			if len(a.targets()) == 0 {
				return fmt.Errorf("%w: step %d: %s without target", ErrScript, i+1, a.Do)
			}
		}
	}
	return nil
}
