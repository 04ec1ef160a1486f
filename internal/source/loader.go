package source

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
)

// DefaultDPI is the resolution PDF pages are rasterised at.
const DefaultDPI = 150

type pageKey struct {
	path string
	page int
}

// Loader opens sources on demand and caches decoded pages. Relative paths
// resolve against Dir. Safe for concurrent use.
type Loader struct {
	Dir string
	DPI int

	mu      sync.Mutex
	sources map[string]Source
	pages   map[pageKey]image.Image
}

// NewLoader creates a loader resolving paths against dir.
func NewLoader(dir string, dpi int) *Loader {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Loader{
		Dir:     dir,
		DPI:     dpi,
		sources: make(map[string]Source),
		pages:   make(map[pageKey]image.Image),
	}
}

func (l *Loader) resolve(path string) string {
	if filepath.IsAbs(path) || l.Dir == "" {
		return path
	}
	return filepath.Join(l.Dir, path)
}

// open must be called with l.mu held.
func (l *Loader) open(path string) (Source, error) {
	if src, ok := l.sources[path]; ok {
		return src, nil
	}
	src, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	l.sources[path] = src
	return src, nil
}

// Image returns the decoded page of a source.
func (l *Loader) Image(path string, page int) (image.Image, error) {
	path = l.resolve(path)
	key := pageKey{path, page}

	l.mu.Lock()
	defer l.mu.Unlock()
	if img, ok := l.pages[key]; ok {
		return img, nil
	}
	src, err := l.open(path)
	if err != nil {
		return nil, err
	}
	img, err := src.RenderPage(page, l.DPI)
	if err != nil {
		return nil, fmt.Errorf("render %s page %d: %w", path, page, err)
	}
	l.pages[key] = img
	return img, nil
}

// Size reports the page size in pixels at the loader's resolution.
func (l *Loader) Size(path string, page int) (int, int, error) {
	path = l.resolve(path)

	l.mu.Lock()
	defer l.mu.Unlock()
	if img, ok := l.pages[pageKey{path, page}]; ok {
		b := img.Bounds()
		return b.Dx(), b.Dy(), nil
	}
	src, err := l.open(path)
	if err != nil {
		return 0, 0, err
	}
	w, h, err := src.GetPageDimensions(page)
	if err != nil {
		return 0, 0, err
	}
	return int(w), int(h), nil
}

// Stamp identifies the current contents of a source file by its size and
// modification time.
func (l *Loader) Stamp(path string) (string, error) {
	fi, err := os.Stat(l.resolve(path))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d:%d", path, fi.Size(), fi.ModTime().UnixNano()), nil
}

// Close closes every opened source.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var first error
	for path, src := range l.sources {
		if err := src.Close(); err != nil && first == nil {
			first = err
		}
		delete(l.sources, path)
	}
	l.pages = make(map[pageKey]image.Image)
	return first
}
