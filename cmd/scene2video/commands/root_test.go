package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/ivlev/scene2video/internal/director"
)

func flagCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	preset, configPath, output, builtin = "", "", "", ""
	width, height, fps, workers, quality = 0, 0, 0, 0, 0

	cmd := &cobra.Command{Use: "test"}
	f := cmd.Flags()
	f.StringVar(&preset, "preset", "", "")
	f.StringVar(&configPath, "config", "", "")
	f.IntVar(&width, "width", 0, "")
	f.IntVar(&height, "height", 0, "")
	f.IntVar(&fps, "fps", 0, "")
	f.IntVar(&workers, "workers", 0, "")
	f.IntVar(&quality, "quality", 0, "")
	f.StringVar(&output, "output", "", "")
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	return cmd
}

func TestResolveConfigLayers(t *testing.T) {
	script := &director.Script{Name: "demo", Width: 1280, Height: 720, FPS: 24}

	tests := []struct {
		name string
		args []string
		w, h int
		fps  int
	}{
		{"script settings", nil, 1280, 720, 24},
		{"preset beats script", []string{"--preset", "low"}, 854, 480, 15},
		{"flags beat script", []string{"--fps", "60", "--width", "640", "--height", "360"}, 640, 360, 60},
		{"flags beat preset", []string{"--preset", "medium", "--fps", "12"}, 1280, 720, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := resolveConfig(flagCmd(t, tt.args...), script, "")
			if err != nil {
				t.Fatalf("resolveConfig failed: %v", err)
			}
			if cfg.Width != tt.w || cfg.Height != tt.h || cfg.FPS != tt.fps {
				t.Errorf("Got %dx%d@%d, expected %dx%d@%d", cfg.Width, cfg.Height, cfg.FPS, tt.w, tt.h, tt.fps)
			}
		})
	}
}

func TestResolveConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.yaml")
	if err := os.WriteFile(path, []byte("output_dir: out\nquality: 30\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cmd := flagCmd(t, "--config", path, "--quality", "18")
	cfg, err := resolveConfig(cmd, &director.Script{Name: "demo"}, "scenes/demo.yaml")
	if err != nil {
		t.Fatalf("resolveConfig failed: %v", err)
	}
	if cfg.OutputDir != "out" {
		t.Errorf("OutputDir = %q, expected file value", cfg.OutputDir)
	}
	if cfg.Quality != 18 {
		t.Errorf("Quality = %d, expected flag value 18", cfg.Quality)
	}
	if cfg.Width != 1920 || cfg.FPS != 60 {
		t.Errorf("Expected the default high preset, got %dx%d@%d", cfg.Width, cfg.Height, cfg.FPS)
	}
	if cfg.ScriptPath != "scenes/demo.yaml" {
		t.Errorf("ScriptPath = %q", cfg.ScriptPath)
	}
}

func TestResolveConfigRejectsOddSize(t *testing.T) {
	cmd := flagCmd(t, "--width", "1281")
	if _, err := resolveConfig(cmd, &director.Script{Name: "demo"}, ""); err == nil {
		t.Error("Expected an error for an odd width")
	}
}

func TestLoadScriptBuiltin(t *testing.T) {
	flagCmd(t)
	builtin = "gpt"
	defer func() { builtin = "" }()

	s, path, err := loadScript(nil)
	if err != nil {
		t.Fatalf("loadScript failed: %v", err)
	}
	if s.Name != "gpt" || path != "" {
		t.Errorf("Got script %q from %q", s.Name, path)
	}
	if _, _, err := loadScript([]string{"other.yaml"}); err == nil {
		t.Error("Expected an error when both --builtin and a path are given")
	}
}
