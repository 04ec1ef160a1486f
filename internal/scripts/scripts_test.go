package scripts

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/ivlev/scene2video/internal/director"
)

func TestList(t *testing.T) {
	want := []string{"bert", "deepseek-r1", "faithfulness", "gpt", "llama3"}
	if got := List(); !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, expected %v", got, want)
	}
}

func TestBuiltinScriptsRun(t *testing.T) {
	for _, name := range List() {
		t.Run(name, func(t *testing.T) {
			s, err := Load(name)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if s.Name != name {
				t.Errorf("Script %s declares name %q", name, s.Name)
			}

			rec, warnings, err := director.Validate(context.Background(), s)
			if err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			if len(rec.Sections) != len(s.Sections) {
				t.Errorf("Expected %d sections, recorded %d", len(s.Sections), len(rec.Sections))
			}
			for _, c := range rec.Calls {
				if c.Op == "end" && c.Detail != "" {
					t.Errorf("Section %s ended with %s on the canvas", c.Section, c.Detail)
				}
			}
			_, _, fps := s.Resolution()
			t.Logf("%s: %d sections, %.1fs, %d layout warnings",
				name, len(rec.Sections), float64(rec.Frames())/float64(fps), len(warnings))
		})
	}
}

func TestLoadUnknown(t *testing.T) {
	if _, err := Load("gpt-5"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestNameMapping(t *testing.T) {
	if got := fileOf("DeepSeek-R1"); got != "deepseek_r1.yaml" {
		t.Errorf("fileOf = %q", got)
	}
	if got := nameOf("deepseek_r1.yaml"); got != "deepseek-r1" {
		t.Errorf("nameOf = %q", got)
	}
}
