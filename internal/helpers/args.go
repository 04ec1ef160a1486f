package helpers

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/gogpu/gg"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/scene2video/internal/palette"
)

// decode fills dst, already holding the helper defaults, from the script's
// args mapping. Unknown argument names are rejected.
func decode(args *yaml.Node, dst any) error {
	if args == nil || args.Kind == 0 || args.ShortTag() == "!!null" {
		return nil
	}
	if args.Kind != yaml.MappingNode {
		return fmt.Errorf("args at line %d: expected a mapping", args.Line)
	}
	data, err := yaml.Marshal(args)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("args at line %d: %w", args.Line, err)
	}
	return nil
}

// color resolves a palette name or hex literal.
func color(p palette.Palette, key, name string) (gg.RGBA, error) {
	c, err := p.Lookup(name)
	if err != nil {
		return gg.RGBA{}, fmt.Errorf("argument %s: %w", key, err)
	}
	return c, nil
}
