package scene

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML accepts [x, y], a direction name ("up", "dl") or a sum of
// scaled directions ("up*2+left").
func (v *Vec) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		var xy []float64
		if err := n.Decode(&xy); err != nil {
			return err
		}
		if len(xy) != 2 {
			return fmt.Errorf("line %d: expected [x, y], got %d values", n.Line, len(xy))
		}
		v.X, v.Y = xy[0], xy[1]
		return nil
	case yaml.ScalarNode:
		p, err := ParseVec(n.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		*v = p
		return nil
	}
	return fmt.Errorf("line %d: expected vector", n.Line)
}

// MarshalYAML implements yaml.Marshaler.
func (v Vec) MarshalYAML() (any, error) {
	return []float64{v.X, v.Y}, nil
}

// ParseVec parses the scalar vector forms.
func ParseVec(s string) (Vec, error) {
	var out Vec
	for _, term := range strings.Split(strings.ReplaceAll(s, " ", ""), "+") {
		if term == "" {
			return Vec{}, fmt.Errorf("bad vector %q", s)
		}
		k := 1.0
		name := term
		if a, b, ok := strings.Cut(term, "*"); ok {
			if f, err := strconv.ParseFloat(a, 64); err == nil {
				k, name = f, b
			} else if f, err := strconv.ParseFloat(b, 64); err == nil {
				k, name = f, a
			} else {
				return Vec{}, fmt.Errorf("bad vector term %q", term)
			}
		}
		neg := strings.HasPrefix(name, "-")
		d, ok := Direction(strings.ToLower(strings.TrimPrefix(name, "-")))
		if !ok {
			return Vec{}, fmt.Errorf("unknown direction %q", name)
		}
		if neg {
			k = -k
		}
		out.X += d.X * k
		out.Y += d.Y * k
	}
	return out, nil
}
