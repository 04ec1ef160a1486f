package director

import "gopkg.in/yaml.v3"

// Script is a complete scene: render settings plus ordered sections.
type Script struct {
	Version    string            `yaml:"version"`
	Name       string            `yaml:"name"`
	Title      string            `yaml:"title,omitempty"`
	Output     string            `yaml:"output,omitempty"`
	Width      int               `yaml:"width,omitempty"`
	Height     int               `yaml:"height,omitempty"`
	FPS        int               `yaml:"fps,omitempty"`
	Background string            `yaml:"background,omitempty"`
	Palette    map[string]string `yaml:"palette,omitempty"`
	Sections   []Section         `yaml:"sections"`
}

// Section is one titled sub-scene. Its objects are built fresh when the
// section starts and must all be gone when it ends.
type Section struct {
	Title   string       `yaml:"title"`
	Objects []ObjectSpec `yaml:"objects,omitempty"`
	Steps   []Step       `yaml:"steps"`
}

// ObjectSpec describes one object: a primitive, a helper composite, a
// composite of nested specs, or a layout group of earlier objects.
type ObjectSpec struct {
	ID   string `yaml:"id,omitempty"`
	Kind string `yaml:"kind,omitempty"`

	Text        string  `yaml:"text,omitempty"`
	Math        string  `yaml:"math,omitempty"`
	Size        float64 `yaml:"size,omitempty"`
	Bold        bool    `yaml:"bold,omitempty"`
	LineSpacing float64 `yaml:"line_spacing,omitempty"`
	MaxWidth    float64 `yaml:"max_width,omitempty"`

	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`
	Radius float64 `yaml:"radius,omitempty"`
	Corner float64 `yaml:"corner,omitempty"`
	// Angles in degrees.
	StartAngle float64  `yaml:"start_angle,omitempty"`
	Angle      float64  `yaml:"angle,omitempty"`
	From       *Point   `yaml:"from,omitempty"`
	To         *Point   `yaml:"to,omitempty"`
	Buff       *float64 `yaml:"buff,omitempty"`

	Color       string   `yaml:"color,omitempty"`
	Fill        string   `yaml:"fill,omitempty"`
	FillOpacity *float64 `yaml:"fill_opacity,omitempty"`
	StrokeWidth *float64 `yaml:"stroke_width,omitempty"`
	Gradient    []string `yaml:"gradient,omitempty"`

	Source  string `yaml:"source,omitempty"`
	Page    int    `yaml:"page,omitempty"`
	Payload string `yaml:"payload,omitempty"`

	Helper string     `yaml:"helper,omitempty"`
	Args   *yaml.Node `yaml:"args,omitempty"`

	Children []ObjectSpec `yaml:"children,omitempty"`
	Members  []string     `yaml:"members,omitempty"`

	Arrange *ArrangeSpec `yaml:"arrange,omitempty"`
	Grid    *GridSpec    `yaml:"grid,omitempty"`
	Ring    *RingSpec    `yaml:"ring,omitempty"`
	Spread  *SpreadSpec  `yaml:"spread,omitempty"`

	Scale float64    `yaml:"scale,omitempty"`
	Place *PlaceSpec `yaml:"place,omitempty"`
}

// ArrangeSpec chains members in a direction.
type ArrangeSpec struct {
	Dir   Vec      `yaml:"dir"`
	Buff  *float64 `yaml:"buff,omitempty"`
	Align Vec      `yaml:"align,omitempty"`
}

// GridSpec lays members out in rows and columns.
type GridSpec struct {
	Rows  int     `yaml:"rows,omitempty"`
	Cols  int     `yaml:"cols,omitempty"`
	Buff  float64 `yaml:"buff,omitempty"`
	HBuff float64 `yaml:"hbuff,omitempty"`
	VBuff float64 `yaml:"vbuff,omitempty"`
}

// RingSpec puts members on a circle.
type RingSpec struct {
	Radius float64 `yaml:"radius"`
	Start  float64 `yaml:"start,omitempty"`
}

// SpreadSpec distributes members along a segment.
type SpreadSpec struct {
	From Vec `yaml:"from"`
	To   Vec `yaml:"to"`
}

// PlaceSpec is the script form of a layout record.
type PlaceSpec struct {
	At       *Vec     `yaml:"at,omitempty"`
	CenterOn string   `yaml:"center_on,omitempty"`
	NextTo   string   `yaml:"next_to,omitempty"`
	Dir      Vec      `yaml:"dir,omitempty"`
	Align    Vec      `yaml:"align,omitempty"`
	Edge     Vec      `yaml:"edge,omitempty"`
	Buff     *float64 `yaml:"buff,omitempty"`
	Pivot    Vec      `yaml:"pivot,omitempty"`
	Shift    Vec      `yaml:"shift,omitempty"`
}

// Step is one statement of a section, executed as add, play, remove,
// clear, wait.
type Step struct {
	Add     []string `yaml:"add,omitempty"`
	Play    []Action `yaml:"play,omitempty"`
	RunTime float64  `yaml:"run_time,omitempty"`
	Rate    string   `yaml:"rate,omitempty"`
	// Lag staggers the actions of Play.
	Lag    float64  `yaml:"lag,omitempty"`
	Remove []string `yaml:"remove,omitempty"`
	Clear  bool     `yaml:"clear,omitempty"`
	Wait   float64  `yaml:"wait,omitempty"`
}

// Action is one animation in a play step. Target "all" means every live
// object.
type Action struct {
	Do      string   `yaml:"do"`
	Target  string   `yaml:"target,omitempty"`
	Targets []string `yaml:"targets,omitempty"`
	// To is the replacement object of a transform.
	To    string  `yaml:"to,omitempty"`
	Shift Vec     `yaml:"shift,omitempty"`
	Scale float64 `yaml:"scale,omitempty"`
	Edge  Vec     `yaml:"edge,omitempty"`
	// Lag staggers multiple targets, or the members of a single composite.
	Lag  float64 `yaml:"lag,omitempty"`
	Rate string  `yaml:"rate,omitempty"`
	// Move only: new colour and placement.
	Color string     `yaml:"color,omitempty"`
	Place *PlaceSpec `yaml:"place,omitempty"`
}

func (a Action) targets() []string {
	if a.Target != "" {
		return append([]string{a.Target}, a.Targets...)
	}
	return a.Targets
}
