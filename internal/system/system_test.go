package system

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFindLatestFile(t *testing.T) {
	dir := t.TempDir()
	names := []string{"a.mp3", "b.WAV", "c.txt"}
	for i, n := range names {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		mod := time.Now().Add(time.Duration(i) * time.Hour)
		if err := os.Chtimes(p, mod, mod); err != nil {
			t.Fatal(err)
		}
	}

	got, err := FindLatestAudio(dir)
	if err != nil {
		t.Fatalf("FindLatestAudio failed: %v", err)
	}
	if filepath.Base(got) != "b.WAV" {
		t.Errorf("Expected b.WAV, got %s", got)
	}
	if _, err := FindLatestFile(dir, ".pdf"); err == nil {
		t.Error("Expected error without matching files")
	}
}

func TestSuggestWorkers(t *testing.T) {
	if n := SuggestWorkers(4, 1280, 720); n < 1 || n > 4 {
		t.Errorf("Expected 1..4 workers, got %d", n)
	}
	if n := SuggestWorkers(0, 16, 16); n < 1 {
		t.Errorf("Expected at least one worker, got %d", n)
	}
	t.Log(MemoryReport())
}

func TestImagePool(t *testing.T) {
	p := NewImagePool()
	a := p.Get(image.Rect(0, 0, 8, 4))
	if a.Bounds().Dx() != 8 || len(a.Pix) != 8*4*4 {
		t.Fatalf("Unexpected buffer %v", a.Bounds())
	}
	p.Put(a)
	b := p.Get(image.Rect(10, 10, 18, 14))
	if b.Bounds() != image.Rect(10, 10, 18, 14) || len(b.Pix) != 8*4*4 {
		t.Errorf("Unexpected pooled buffer %v", b.Bounds())
	}
}

func TestDefaultQuality(t *testing.T) {
	tests := map[string]int{"h264_videotoolbox": 75, "h264_nvenc": 28, "libx264": 20}
	for enc, want := range tests {
		if got := DefaultQuality(enc); got != want {
			t.Errorf("DefaultQuality(%s) = %d, expected %d", enc, got, want)
		}
	}
}
