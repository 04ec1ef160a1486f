package director

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/scene2video/internal/scene"
)

// Vec is a vector written as [x, y], a direction name ("up", "dl") or a
// sum of scaled directions ("up*2+left").
type Vec = scene.Vec

// ParseVec parses the scalar vector forms.
func ParseVec(s string) (Vec, error) {
	return scene.ParseVec(s)
}

// Point is an absolute position or a point on another object's bounds.
type Point struct {
	At     *Vec
	Of     string
	Side   Vec
	Offset Vec
}

type pointRef struct {
	Of     string `yaml:"of"`
	Side   Vec    `yaml:"side,omitempty"`
	Offset Vec    `yaml:"offset,omitempty"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Point) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.MappingNode {
		var ref pointRef
		if err := n.Decode(&ref); err != nil {
			return err
		}
		if ref.Of == "" {
			return fmt.Errorf("line %d: point reference without 'of'", n.Line)
		}
		*p = Point{Of: ref.Of, Side: ref.Side, Offset: ref.Offset}
		return nil
	}
	var v Vec
	if err := v.UnmarshalYAML(n); err != nil {
		return err
	}
	*p = Point{At: &v}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (p Point) MarshalYAML() (any, error) {
	if p.At != nil {
		return p.At, nil
	}
	return pointRef{Of: p.Of, Side: p.Side, Offset: p.Offset}, nil
}
