package director

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ivlev/scene2video/internal/stage"
)

const sampleScript = `
version: "1.0"
name: sample
width: 1280
height: 720
fps: 10
palette:
  brand: "#1877F2"
sections:
  - title: Title
    objects:
      - id: title
        text: Sample Title
        size: 48
        color: brand
        place: {edge: up}
      - id: stage1
        helper: labeled_box
        args: {text: "Stage 1", color: blue}
        place: {at: left*3}
      - id: stage2
        helper: labeled_box
        args: {text: "Stage 2", color: green}
        place: {next_to: stage1, dir: right, buff: 2}
      - id: link
        kind: arrow
        from: {of: stage1, side: right}
        to: {of: stage2, side: left}
      - id: done
        text: Done
        place: {center_on: stage2}
    steps:
      - play: [{do: write, target: title}]
        run_time: 2
      - play:
          - {do: fade_in, targets: [stage1, stage2], shift: up, lag: 0.3}
          - {do: grow_arrow, target: link}
        wait: 1
      - play: [{do: indicate, target: stage1}]
      - play: [{do: move, target: title, shift: down*0.5, color: yellow}]
      - play: [{do: transform, target: stage2, to: done}]
      - play: [{do: fade_out, target: all}]
        wait: 0.5
  - title: Conclusion
    objects:
      - id: a
        text: One
      - id: b
        text: Two
      - id: list
        members: [a, b]
        arrange: {dir: down, buff: 0.5}
    steps:
      - play: [{do: fade_in, target: list, lag: 0.5}]
      - play: [{do: fade_out, target: list}]
`

func parse(t *testing.T, src string) *Script {
	t.Helper()
	s, err := ParseScript([]byte(src))
	if err != nil {
		t.Fatalf("ParseScript failed: %v", err)
	}
	return s
}

func TestRunRecordsSectionsInOrder(t *testing.T) {
	script := parse(t, sampleScript)
	rec, warnings, err := Validate(context.Background(), script)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	for _, w := range warnings {
		t.Logf("warning: %s", w)
	}

	if !reflect.DeepEqual(rec.Sections, []string{"Title", "Conclusion"}) {
		t.Errorf("Unexpected section order %v", rec.Sections)
	}
	// one begin/end pair per section, one call per statement
	want := []string{"begin", "play", "play", "wait", "play", "play", "play", "play", "wait", "end",
		"begin", "play", "play", "end"}
	if got := rec.Ops(""); !reflect.DeepEqual(got, want) {
		t.Errorf("Unexpected ops\n got %v\nwant %v", got, want)
	}
	for _, c := range rec.Calls {
		if (c.Op == "play" || c.Op == "wait") && c.Frames < 1 {
			t.Errorf("%s emitted no frames", c)
		}
	}
	if rec.Frames() != 20+10+10+10+10+10+10+5+10+10 {
		t.Errorf("Unexpected frame total %d", rec.Frames())
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		steps  string
		target error
	}{
		{
			name:   "leftover",
			steps:  "      - play: [{do: fade_in, target: a}]\n",
			target: ErrLeftover,
		},
		{
			name: "retired",
			steps: "      - play: [{do: fade_in, target: a}]\n" +
				"      - play: [{do: fade_out, target: a}]\n" +
				"      - play: [{do: fade_in, target: a}]\n",
			target: ErrRetired,
		},
		{
			name:   "unknown",
			steps:  "      - play: [{do: fade_in, target: zzz}]\n",
			target: ErrUnknownObject,
		},
		{
			name:   "not live",
			steps:  "      - play: [{do: fade_out, target: a}]\n",
			target: stage.ErrNotOnCanvas,
		},
		{
			name: "entered twice",
			steps: "      - play: [{do: fade_in, target: a}]\n" +
				"      - play: [{do: write, target: a}]\n" +
				"      - play: [{do: fade_out, target: a}]\n",
			target: stage.ErrAlreadyOnCanvas,
		},
		{
			name: "added while live",
			steps: "      - add: [a]\n" +
				"      - add: [a]\n" +
				"      - remove: [a]\n",
			target: stage.ErrAlreadyOnCanvas,
		},
		{
			name: "transform onto live object",
			steps: "      - play: [{do: fade_in, targets: [a, b]}]\n" +
				"      - play: [{do: transform, target: a, to: b}]\n" +
				"      - play: [{do: fade_out, target: all}]\n",
			target: stage.ErrAlreadyOnCanvas,
		},
		{
			name: "transformed source is retired",
			steps: "      - play: [{do: fade_in, target: a}]\n" +
				"      - play: [{do: transform, target: a, to: b}]\n" +
				"      - play: [{do: fade_out, targets: [a, b]}]\n",
			target: ErrRetired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "name: broken\nsections:\n  - title: Only\n    objects:\n" +
				"      - {id: a, text: A}\n      - {id: b, text: B}\n    steps:\n" + tt.steps
			_, _, err := Validate(context.Background(), parse(t, src))
			if !errors.Is(err, tt.target) {
				t.Errorf("Expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Validate(ctx, parse(t, sampleScript)); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestMoveUpdatesGeometry(t *testing.T) {
	script := parse(t, sampleScript)
	d, err := NewDirector(script, 1280, 720, nil)
	if err != nil {
		t.Fatal(err)
	}
	r := newRun(d, "t")
	for _, spec := range script.Sections[0].Objects {
		if err := r.build(spec); err != nil {
			t.Fatalf("build %s: %v", spec.ID, err)
		}
	}
	rec := stage.NewRecorder(10)
	if err := rec.BeginSection("t"); err != nil {
		t.Fatal(err)
	}
	before := r.built["title"].Center()
	steps := []Step{
		{Play: []Action{{Do: "fade_in", Target: "title"}}},
		{Play: []Action{{Do: "move", Target: "title", Shift: Vec{Y: -1}}}},
	}
	for _, s := range steps {
		if err := r.step(s, rec); err != nil {
			t.Fatalf("step failed: %v", err)
		}
	}
	after := r.built["title"].Center()
	if math.Abs(after.Y-(before.Y-1)) > 1e-9 || math.Abs(after.X-before.X) > 1e-9 {
		t.Errorf("Expected title to move down by 1, got %+v -> %+v", before, after)
	}
	if got := rec.Visible(); !reflect.DeepEqual(got, []string{"title"}) {
		t.Errorf("Expected title to stay live, got %v", got)
	}
}

func TestMoveKeepsDrawOrder(t *testing.T) {
	src := "name: layers\nsections:\n  - title: Only\n    objects:\n" +
		"      - {id: box, kind: rect, width: 2, height: 1}\n      - {id: label, text: Box}\n" +
		"    steps:\n" +
		"      - play: [{do: fade_in, targets: [box, label]}]\n" +
		"      - play: [{do: move, target: box, shift: right}]\n"
	script := parse(t, src)
	d, err := NewDirector(script, 1280, 720, nil)
	if err != nil {
		t.Fatal(err)
	}
	rec := stage.NewRecorder(10)
	if err := rec.BeginSection("Only"); err != nil {
		t.Fatal(err)
	}
	r := newRun(d, "Only")
	for _, spec := range script.Sections[0].Objects {
		if err := r.build(spec); err != nil {
			t.Fatalf("build %s: %v", spec.ID, err)
		}
	}
	for _, s := range script.Sections[0].Steps {
		if err := r.step(s, rec); err != nil {
			t.Fatalf("step failed: %v", err)
		}
	}
	if got := rec.Visible(); !reflect.DeepEqual(got, []string{"box", "label"}) {
		t.Errorf("Expected the moved box to stay under its label, got %v", got)
	}
}

func TestParseScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no sections", "name: x\n"},
		{"no name", "sections: [{title: A, steps: [{wait: 1}]}]\n"},
		{"duplicate id", "name: x\nsections:\n  - title: A\n    objects: [{id: a, text: A}, {id: a, text: B}]\n    steps: [{wait: 1}]\n"},
		{"reserved id", "name: x\nsections:\n  - title: A\n    objects: [{id: all, text: A}]\n    steps: [{wait: 1}]\n"},
		{"empty step", "name: x\nsections:\n  - title: A\n    steps: [{run_time: 1}]\n"},
		{"no steps", "name: x\nsections:\n  - title: A\n    objects: [{id: a, text: A}]\n    steps: []\n"},
		{"unknown key", "name: x\ncolour: red\nsections:\n  - title: A\n    steps: [{wait: 1}]\n"},
		{"bad vector", "name: x\nsections:\n  - title: A\n    objects: [{id: a, text: A, place: {at: sideways}}]\n    steps: [{wait: 1}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScript([]byte(tt.src)); err == nil {
				t.Error("Expected parse error")
			}
		})
	}
}

func TestParseVec(t *testing.T) {
	tests := []struct {
		in   string
		want Vec
	}{
		{"up", Vec{X: 0, Y: 1}},
		{"up*2", Vec{X: 0, Y: 2}},
		{"2.5*left", Vec{X: -2.5, Y: 0}},
		{"up*2+left*3", Vec{X: -3, Y: 2}},
		{"-dr", Vec{X: -1, Y: 1}},
		{"origin", Vec{}},
	}
	for _, tt := range tests {
		got, err := ParseVec(tt.in)
		if err != nil {
			t.Errorf("ParseVec(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVec(%q) = %+v, expected %+v", tt.in, got, tt.want)
		}
	}
}

func TestScriptWriteRead(t *testing.T) {
	script := parse(t, sampleScript)

	tmpFile := filepath.Join(t.TempDir(), "sample.yaml")
	if err := WriteScript(script, tmpFile); err != nil {
		t.Fatalf("WriteScript failed: %v", err)
	}

	readScript, err := ReadScript(tmpFile)
	if err != nil {
		t.Fatalf("ReadScript failed: %v", err)
	}
	if readScript.Name != script.Name || len(readScript.Sections) != len(script.Sections) {
		t.Errorf("Round trip mismatch: %s/%d vs %s/%d", readScript.Name, len(readScript.Sections), script.Name, len(script.Sections))
	}
	if _, _, err := Validate(context.Background(), readScript); err != nil {
		t.Errorf("Re-read script no longer runs: %v", err)
	}
}
