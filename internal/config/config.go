package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrConfig marks an unusable configuration.
var ErrConfig = errors.New("invalid configuration")

// Config is the render configuration of one run. Values are layered:
// defaults, quality preset, config file, script, command line.
type Config struct {
	ScriptPath       string    `yaml:"-"`
	OutputVideo      string    `yaml:"output,omitempty"`
	OutputDir        string    `yaml:"output_dir,omitempty"`
	Width            int       `yaml:"width,omitempty"`
	Height           int       `yaml:"height,omitempty"`
	FPS              int       `yaml:"fps,omitempty"`
	Workers          int       `yaml:"workers,omitempty"`
	FadeDuration     float64   `yaml:"fade_duration,omitempty"`
	TransitionType   string    `yaml:"transition,omitempty"`
	DPI              int       `yaml:"dpi,omitempty"`
	AssetsDir        string    `yaml:"assets_dir,omitempty"`
	AudioPath        string    `yaml:"audio,omitempty"`
	BackgroundAudio  string    `yaml:"background_audio,omitempty"`
	BackgroundVolume float64   `yaml:"background_volume,omitempty"`
	Preset           string    `yaml:"preset,omitempty"`
	SectionDurations []float64 `yaml:"-"`
	TotalDuration    float64   `yaml:"-"`
	// VideoEncoder "auto" is resolved by probing ffmpeg before rendering.
	VideoEncoder     string    `yaml:"encoder,omitempty"`
	// Quality 0 picks the encoder default.
	Quality          int       `yaml:"quality,omitempty"`
	CacheDir         string    `yaml:"cache_dir,omitempty"`
	NoCache          bool      `yaml:"no_cache,omitempty"`
	ShowStats        bool      `yaml:"stats,omitempty"`
	Verbose          bool      `yaml:"verbose,omitempty"`
	BuildVersion     string    `yaml:"-"`
}

// SegmentParams describes one encoded section.
type SegmentParams struct {
	Width, Height int
	FPS           int
	Duration      float64
	FadeDuration  float64
	Index         int
	Title         string
}

// Preset is a named resolution and frame rate.
type Preset struct {
	Width, Height, FPS int
}

// Presets are the quality levels of the command line.
var Presets = map[string]Preset{
	"low":        {854, 480, 15},
	"medium":     {1280, 720, 30},
	"high":       {1920, 1080, 60},
	"production": {2560, 1440, 60},
	"fourk":      {3840, 2160, 60},
}

// PresetNames lists the presets from lowest to highest resolution.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for n := range Presets {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		return Presets[names[i]].Height < Presets[names[j]].Height
	})
	return names
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		OutputDir:        "media",
		Workers:          runtime.NumCPU(),
		TransitionType:   "none",
		DPI:              150,
		BackgroundVolume: 0.3,
		Preset:           "high",
		VideoEncoder:     "auto",
		CacheDir:         ".scene2video-cache",
	}
}

// ApplyPreset sets resolution and frame rate from a named preset.
func (c *Config) ApplyPreset(name string) error {
	p, ok := Presets[name]
	if !ok {
		return fmt.Errorf("%w: unknown preset %q", ErrConfig, name)
	}
	c.Preset = name
	c.Width, c.Height, c.FPS = p.Width, p.Height, p.FPS
	return nil
}

// LoadFile overlays the non-empty values of a YAML file onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings no renderer can honour.
func (c *Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: resolution %dx%d", ErrConfig, c.Width, c.Height)
	case c.Width%2 != 0 || c.Height%2 != 0:
		return fmt.Errorf("%w: yuv420p needs even dimensions, got %dx%d", ErrConfig, c.Width, c.Height)
	case c.FPS <= 0 || c.FPS > 240:
		return fmt.Errorf("%w: frame rate %d", ErrConfig, c.FPS)
	case c.Workers <= 0:
		return fmt.Errorf("%w: %d workers", ErrConfig, c.Workers)
	case c.FadeDuration < 0:
		return fmt.Errorf("%w: negative fade duration", ErrConfig)
	case c.BackgroundVolume < 0:
		return fmt.Errorf("%w: negative background volume", ErrConfig)
	}
	return nil
}
