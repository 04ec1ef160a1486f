package source

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoaderImageAndSize(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "diagram.png"), 40, 20)

	l := NewLoader(dir, 0)
	defer l.Close()

	w, h, err := l.Size("diagram.png", 0)
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if w != 40 || h != 20 {
		t.Errorf("Expected 40x20, got %dx%d", w, h)
	}

	a, err := l.Image("diagram.png", 0)
	if err != nil {
		t.Fatalf("Image failed: %v", err)
	}
	b, _ := l.Image(filepath.Join(dir, "diagram.png"), 0)
	if a != b {
		t.Error("Expected the cached page for the absolute path")
	}
}

func TestLoaderErrors(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "one.png"), 4, 4)
	l := NewLoader(dir, 72)

	if _, err := l.Image("missing.png", 0); err == nil {
		t.Error("Expected error for a missing file")
	}
	if _, err := l.Image("one.png", 3); err == nil {
		t.Error("Expected error for a page out of range")
	}
}

func TestImageSourceDirectory(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 2, 2)
	writePNG(t, filepath.Join(dir, "a.PNG"), 3, 3)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	src, err := NewImageSource(dir)
	if err != nil {
		t.Fatal(err)
	}
	if src.PageCount() != 2 {
		t.Fatalf("Expected 2 pages, got %d", src.PageCount())
	}
	w, _, err := src.GetPageDimensions(0)
	if err != nil || w != 3 {
		t.Errorf("Expected a.PNG first (3px wide), got %v, %v", w, err)
	}
}
