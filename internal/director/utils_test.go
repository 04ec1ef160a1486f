package director

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGenerateScriptPath(t *testing.T) {
	path := GenerateScriptPath("scripts", "llama3")

	if filepath.Dir(path) != "scripts" {
		t.Errorf("Path should be in scripts: %s", path)
	}
	if !strings.HasPrefix(filepath.Base(path), "llama3_") || filepath.Ext(path) != ".yaml" {
		t.Errorf("Unexpected file name: %s", path)
	}

	t.Logf("Generated path: %s", path)
}

func TestFindLatestScript(t *testing.T) {
	testDir := t.TempDir()

	files := []string{
		filepath.Join(testDir, "demo_2026-02-12_10-00-00.yaml"),
		filepath.Join(testDir, "demo_2026-02-13_01-00-00.yaml"),
		filepath.Join(testDir, "demo_2026-02-11_15-30-00.yml"),
	}
	for i, f := range files {
		if err := os.WriteFile(f, []byte("test"), 0644); err != nil {
			t.Fatal(err)
		}
		modTime := time.Now().Add(time.Duration(i) * time.Hour)
		if err := os.Chtimes(f, modTime, modTime); err != nil {
			t.Fatal(err)
		}
	}
	// not a script
	if err := os.WriteFile(filepath.Join(testDir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	latest, err := FindLatestScript(testDir)
	if err != nil {
		t.Fatalf("FindLatestScript failed: %v", err)
	}
	if latest != files[len(files)-1] {
		t.Errorf("Expected latest to be %s, got %s", files[len(files)-1], latest)
	}
}

func TestFindLatestScriptEmpty(t *testing.T) {
	if _, err := FindLatestScript(t.TempDir()); err == nil {
		t.Error("Expected error for a directory without scripts")
	}
}
