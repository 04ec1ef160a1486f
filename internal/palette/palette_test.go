package palette

import (
	"errors"
	"math"
	"testing"
)

func TestLookup(t *testing.T) {
	p, err := New(map[string]string{
		"meta_blue": "#1877F2",
		"Accent":    "meta_blue",
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	tests := []struct {
		name    string
		wantErr error
	}{
		{"meta_blue", nil},
		{"META_BLUE", nil},
		{"accent", nil},
		{"white", nil},
		{"#fff", nil},
		{"#1877F2AA", nil},
		{"nope", ErrUnknownColor},
		{"#12345", ErrBadHex},
		{"#GGGGGG", ErrBadHex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Lookup(tt.name)
			if tt.wantErr == nil && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAliasResolvesToSameColor(t *testing.T) {
	p, err := New(map[string]string{"brand": "#1877F2", "title": "brand"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	a, _ := p.Lookup("brand")
	b, _ := p.Lookup("title")
	if a != b {
		t.Errorf("Expected alias to match: %v vs %v", a, b)
	}
	if math.Abs(a.R-float64(0x18)/255) > 0.01 {
		t.Errorf("Unexpected red channel %f", a.R)
	}
}

func TestWithDoesNotMutate(t *testing.T) {
	p := Default()
	q, err := p.With(map[string]string{"white": "#000000"})
	if err != nil {
		t.Fatalf("With failed: %v", err)
	}
	orig, _ := p.Lookup("white")
	repl, _ := q.Lookup("white")
	if orig.R != 1 {
		t.Errorf("Base palette was mutated: %v", orig)
	}
	if repl.R != 0 {
		t.Errorf("Override not applied: %v", repl)
	}
}

func TestBadEntry(t *testing.T) {
	if _, err := New(map[string]string{"x": "not-a-color"}); err == nil {
		t.Error("Expected error for unresolvable entry")
	}
}
