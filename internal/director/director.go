package director

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ivlev/scene2video/internal/effects"
	"github.com/ivlev/scene2video/internal/layout"
	"github.com/ivlev/scene2video/internal/palette"
	"github.com/ivlev/scene2video/internal/scene"
	"github.com/ivlev/scene2video/internal/stage"
)

// defaultRunTime is the length of a play step without run_time.
const defaultRunTime = 1.0

// ImageSizer reports the pixel size of an image source.
type ImageSizer interface {
	Size(source string, page int) (w, h int, err error)
}

// Director interprets scripts against a stage
type Director struct {
	Palette palette.Palette
	Measure scene.Measurer
	Images  ImageSizer
	Frame   scene.Rect
	Verbose bool
	// Lint collects overlap and off-frame warnings while running.
	Lint     bool
	Warnings []string

	seen map[string]bool
}

// NewDirector creates a Director for a script rendered at width x height.
// A nil measurer falls back to fixed-advance estimates.
func NewDirector(script *Script, width, height int, m scene.Measurer) (*Director, error) {
	pal, err := palette.New(script.Palette)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = scene.Approx{}
	}
	return &Director{
		Palette: pal,
		Measure: m,
		Frame:   layout.Frame(width, height),
	}, nil
}

// Run plays every section of the script in order. Any failure aborts the run.
func (d *Director) Run(ctx context.Context, script *Script, st stage.Stage) error {
	for i, sec := range script.Sections {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.Verbose {
			fmt.Printf("[*] Секция %d/%d: %s\n", i+1, len(script.Sections), sec.Title)
		}
		if err := d.runSection(ctx, sec, st); err != nil {
			return fmt.Errorf("section %d %q: %w", i+1, sec.Title, err)
		}
	}
	return nil
}

func (d *Director) runSection(ctx context.Context, sec Section, st stage.Stage) (err error) {
	if err := st.BeginSection(sec.Title); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_, _ = st.EndSection()
		}
	}()

	r := newRun(d, sec.Title)
	for _, spec := range sec.Objects {
		if err := r.build(spec); err != nil {
			return err
		}
	}

	for i, step := range sec.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.step(step, st); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		if d.Lint {
			r.lint(st.Visible())
		}
	}

	left, err := st.EndSection()
	if err != nil {
		return err
	}
	if len(left) > 0 {
		return fmt.Errorf("%w: %s", ErrLeftover, strings.Join(left, ", "))
	}
	return nil
}

// run is the state of one section: objects built, layout groups and ids
// that already left the canvas.
type run struct {
	d       *Director
	title   string
	built   map[string]*scene.Object
	groups  map[string][]string
	retired map[string]bool
}

func newRun(d *Director, title string) *run {
	return &run{
		d:       d,
		title:   title,
		built:   make(map[string]*scene.Object),
		groups:  make(map[string][]string),
		retired: make(map[string]bool),
	}
}

func (r *run) step(s Step, st stage.Stage) error {
	for _, ref := range s.Add {
		ids, err := r.expand(ref, st)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := st.Add(id, r.built[id]); err != nil {
				return err
			}
		}
	}

	if len(s.Play) > 0 {
		clips, err := r.clips(s, st)
		if err != nil {
			return err
		}
		runTime := s.RunTime
		if runTime == 0 {
			runTime = defaultRunTime
		}
		if err := st.Play(clips, runTime); err != nil {
			return err
		}
		r.settle(clips)
	}

	for _, ref := range s.Remove {
		ids, err := r.expand(ref, st)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := st.Remove(id); err != nil {
				return err
			}
			r.retired[id] = true
		}
	}

	if s.Clear {
		for _, id := range st.Visible() {
			r.retired[id] = true
		}
		if err := st.Clear(); err != nil {
			return err
		}
	}

	if s.Wait > 0 {
		return st.Wait(s.Wait)
	}
	return nil
}

// expand resolves a target reference into canvas ids: "all" is every live
// object and a layout group stands for its members.
func (r *run) expand(ref string, st stage.Stage) ([]string, error) {
	if ref == allTarget {
		live := st.Visible()
		if len(live) == 0 {
			return nil, fmt.Errorf("%w: %q with an empty canvas", ErrUnknownObject, ref)
		}
		return live, nil
	}
	if members, ok := r.groups[ref]; ok {
		var out []string
		for _, m := range members {
			ids, err := r.expand(m, st)
			if err != nil {
				return nil, err
			}
			out = append(out, ids...)
		}
		return out, nil
	}
	if _, ok := r.built[ref]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownObject, ref)
	}
	if r.retired[ref] {
		return nil, fmt.Errorf("%w: %q", ErrRetired, ref)
	}
	return []string{ref}, nil
}

func (r *run) clips(s Step, st stage.Stage) ([]effects.Clip, error) {
	var out []effects.Clip
	for i, a := range s.Play {
		rate, err := effects.RateByName(orDefault(a.Rate, s.Rate))
		if err != nil {
			return nil, err
		}
		var ids []string
		for _, ref := range a.targets() {
			got, err := r.expand(ref, st)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", a.Do, err)
			}
			ids = append(ids, got...)
		}

		var group []effects.Clip
		switch a.Do {
		case "move":
			group, err = r.moves(a, ids, rate)
		case string(effects.Transform):
			group, err = r.transform(a, ids, rate)
		default:
			group, err = r.simple(a, ids, rate)
		}
		if err != nil {
			return nil, err
		}

		if s.Lag > 0 && len(s.Play) > 1 {
			start, end := effects.LagWindow(i, len(s.Play), s.Lag)
			for j := range group {
				group[j].Start, group[j].End = within(start, end, group[j].Start, group[j].End)
			}
		}
		out = append(out, group...)
	}
	return out, nil
}

// within nests window [s, e) inside the outer window.
func within(outerS, outerE, s, e float64) (float64, float64) {
	if e <= s {
		return outerS, outerE
	}
	return outerS + s*(outerE-outerS), outerS + e*(outerE-outerS)
}

func (r *run) simple(a Action, ids []string, rate effects.Rate) ([]effects.Clip, error) {
	kind, err := effects.Parse(a.Do)
	if err != nil {
		return nil, err
	}
	group := make([]effects.Clip, 0, len(ids))
	for _, id := range ids {
		c := effects.Clip{
			Kind:  kind,
			ID:    id,
			Obj:   r.built[id],
			Shift: a.Shift,
			Scale: a.Scale,
			Edge:  a.Edge,
			Rate:  rate,
		}
		if len(ids) == 1 {
			c.Lag = a.Lag
		}
		group = append(group, c)
	}
	if len(ids) > 1 && a.Lag > 0 {
		group = effects.Lagged(group, a.Lag)
	}
	return group, nil
}

// transform replaces the sources with the object named by To. Extra
// sources fade out while the first one morphs.
func (r *run) transform(a Action, ids []string, rate effects.Rate) ([]effects.Clip, error) {
	if a.To == "" {
		return nil, fmt.Errorf("transform without 'to'")
	}
	if _, ok := r.groups[a.To]; ok {
		return nil, fmt.Errorf("transform into layout group %q", a.To)
	}
	dest, ok := r.built[a.To]
	if !ok {
		return nil, fmt.Errorf("transform: %w: %q", ErrUnknownObject, a.To)
	}
	if r.retired[a.To] {
		return nil, fmt.Errorf("transform: %w: %q", ErrRetired, a.To)
	}

	group := make([]effects.Clip, 0, len(ids))
	for i, id := range ids {
		c := effects.Clip{Kind: effects.Transform, ID: id, Obj: r.built[id], ToID: a.To, To: dest, Rate: rate}
		if i > 0 {
			c = effects.Clip{Kind: effects.FadeOut, ID: id, Obj: r.built[id], Rate: rate}
		}
		group = append(group, c)
	}
	return group, nil
}

// moves animates live objects into a moved, scaled or recoloured copy.
func (r *run) moves(a Action, ids []string, rate effects.Rate) ([]effects.Clip, error) {
	group := make([]effects.Clip, 0, len(ids))
	for _, id := range ids {
		src := r.built[id]
		dst := src.Clone()
		if a.Scale != 0 {
			dst.Scale(a.Scale, dst.Center())
		}
		if err := r.place(dst, a.Place); err != nil {
			return nil, err
		}
		dst.Shift(a.Shift)
		if a.Color != "" {
			c, err := r.d.Palette.Lookup(a.Color)
			if err != nil {
				return nil, err
			}
			recolor(dst, c)
		}
		group = append(group, effects.Clip{Kind: effects.Transform, ID: id, Obj: src, ToID: id, To: dst, Rate: rate})
	}
	return group, nil
}

// settle records the end state of a play: replaced objects take over their
// ids and everything that left is retired.
func (r *run) settle(clips []effects.Clip) {
	for _, c := range clips {
		switch {
		case c.Kind == effects.Transform && c.ToID == c.ID:
			r.replace(c.ID, c.Obj, c.To)
		case c.Kind == effects.Transform:
			r.retired[c.ID] = true
		case c.Kind.Leaves():
			r.retired[c.ID] = true
		}
	}
}

func (r *run) replace(id string, old, obj *scene.Object) {
	r.built[id] = obj
	for gid := range r.groups {
		g := r.built[gid]
		for i, m := range g.Children {
			if m == old {
				g.Children[i] = obj
			}
		}
	}
}

func (r *run) lint(live []string) {
	objs := make([]*scene.Object, 0, len(live))
	for _, id := range live {
		objs = append(objs, r.built[id])
		if layout.Offscreen(r.built[id], r.d.Frame) {
			r.warn(fmt.Sprintf("%s: %s leaves the frame", r.title, id))
		}
	}
	for _, o := range layout.Overlaps(live, objs) {
		r.warn(fmt.Sprintf("%s: %s overlaps %s", r.title, o.A, o.B))
	}
}

func (r *run) warn(msg string) {
	if r.d.seen == nil {
		r.d.seen = make(map[string]bool)
	}
	if r.d.seen[msg] {
		return
	}
	r.d.seen[msg] = true
	r.d.Warnings = append(r.d.Warnings, msg)
}

// Objects lists the ids built by a section, for tooling.
func Objects(sec Section) []string {
	ids := make([]string, 0, len(sec.Objects))
	for _, o := range sec.Objects {
		ids = append(ids, o.ID)
	}
	sort.Strings(ids)
	return ids
}
