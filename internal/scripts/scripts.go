// Package scripts bundles the animation scripts shipped inside the binary.
// They double as examples of the script format.
package scripts

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/ivlev/scene2video/internal/director"
)

//go:embed *.yaml
var files embed.FS

// ErrNotFound is returned for names that are not bundled.
var ErrNotFound = errors.New("no such built-in script")

// List returns the bundled script names in sorted order.
func List() []string {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		names = append(names, nameOf(e.Name()))
	}
	sort.Strings(names)
	return names
}

// Raw returns the YAML source of a bundled script.
func Raw(name string) ([]byte, error) {
	data, err := files.ReadFile(fileOf(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrNotFound, name, strings.Join(List(), ", "))
	}
	return data, nil
}

// Load parses a bundled script.
func Load(name string) (*director.Script, error) {
	data, err := Raw(name)
	if err != nil {
		return nil, err
	}
	s, err := director.ParseScript(data)
	if err != nil {
		return nil, fmt.Errorf("built-in script %s: %w", name, err)
	}
	return s, nil
}

// deepseek-r1 lives in deepseek_r1.yaml
func nameOf(file string) string {
	return strings.ReplaceAll(strings.TrimSuffix(file, ".yaml"), "_", "-")
}

func fileOf(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "-", "_") + ".yaml"
}
