package engine

import (
	"context"
	"fmt"
	"image"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/scene2video/internal/cache"
	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/director"
	"github.com/ivlev/scene2video/internal/palette"
	"github.com/ivlev/scene2video/internal/renderer"
	"github.com/ivlev/scene2video/internal/scene"
	"github.com/ivlev/scene2video/internal/source"
	"github.com/ivlev/scene2video/internal/stage"
	"github.com/ivlev/scene2video/internal/system"
	"github.com/ivlev/scene2video/internal/video"
)

// cacheVersion changes whenever rendering output changes for the same input.
const cacheVersion = "scene2video/1"

type VideoProject struct {
	Config  *config.Config
	Script  *director.Script
	Encoder video.VideoEncoder
	Images  *source.Loader
	// Cache is nil when caching is disabled.
	Cache *cache.Cache

	measure scene.Measurer
	tempDir string
}

func NewVideoProject(cfg *config.Config, script *director.Script, ve video.VideoEncoder) *VideoProject {
	assets := cfg.AssetsDir
	if assets == "" && cfg.ScriptPath != "" {
		assets = filepath.Dir(cfg.ScriptPath)
	}
	return &VideoProject{
		Config:  cfg,
		Script:  script,
		Encoder: ve,
		Images:  source.NewLoader(assets, cfg.DPI),
	}
}

// Close releases opened image sources.
func (p *VideoProject) Close() error {
	return p.Images.Close()
}

func (p *VideoProject) measurer() (scene.Measurer, error) {
	if p.measure == nil {
		m, err := renderer.NewFontMeasurer()
		if err != nil {
			return nil, err
		}
		p.measure = m
	}
	return p.measure, nil
}

// Timeline runs the script against a recording timeline with font metrics.
func (p *VideoProject) Timeline(ctx context.Context) (*stage.Timeline, []string, error) {
	m, err := p.measurer()
	if err != nil {
		return nil, nil, err
	}
	d, err := director.NewDirector(p.Script, p.Config.Width, p.Config.Height, m)
	if err != nil {
		return nil, nil, err
	}
	d.Images = p.Images
	d.Verbose = p.Config.Verbose
	d.Lint = true

	tl := stage.NewTimeline(p.Config.FPS)
	if err := d.Run(ctx, p.Script, tl); err != nil {
		return nil, d.Warnings, err
	}
	return tl, d.Warnings, nil
}

func (p *VideoProject) newCanvas() (*renderer.Canvas, error) {
	pal, err := palette.New(p.Script.Palette)
	if err != nil {
		return nil, err
	}
	name := p.Script.Background
	if name == "" {
		name = "black"
	}
	bg, err := pal.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	return renderer.NewCanvas(p.Config.Width, p.Config.Height, bg, p.Images)
}

// OutputPath is the final video location.
func (p *VideoProject) OutputPath() string {
	if p.Config.OutputVideo != "" {
		return p.Config.OutputVideo
	}
	name := p.Script.Output
	if name == "" {
		name = p.Script.Name
	}
	if filepath.Ext(name) == "" {
		name += ".mp4"
	}
	return filepath.Join(p.Config.OutputDir, name)
}

func (p *VideoProject) Run(ctx context.Context) error {
	startTime := time.Now()

	var err error
	p.tempDir, err = os.MkdirTemp("", "scene2video_")
	if err != nil {
		return err
	}
	defer os.RemoveAll(p.tempDir)

	tl, warnings, err := p.Timeline(ctx)
	if err != nil {
		return fmt.Errorf("ошибка сценария: %w", err)
	}
	for _, w := range warnings {
		log.Printf("[!] %s", w)
	}
	sections := tl.Sections
	if len(sections) == 0 {
		return fmt.Errorf("сценарий не содержит секций")
	}
	timelineEnd := time.Now()

	p.Config.SectionDurations = SectionDurations(sections, p.Config.FPS)
	if fade := FitTransition(p.Config.SectionDurations, p.Config.FadeDuration); fade != p.Config.FadeDuration {
		fmt.Printf("[!] Переход уменьшен до %.2fs из-за короткой секции\n", fade)
		p.Config.FadeDuration = fade
	}
	p.Config.TotalDuration = TotalDuration(p.Config.SectionDurations, p.Config.FadeDuration)

	fmt.Println("--- [PROJECT: SCENE ENGINE] ---")
	fmt.Printf("[*] Сценарий: %s | Секций: %d | Кадров: %d\n", p.Script.Name, len(sections), tl.FrameCount())
	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS | Потоков: %d\n", p.Config.Width, p.Config.Height, p.Config.FPS, p.Config.Workers)
	fmt.Println("-----------------------------")

	results := make([]string, len(sections))
	var ready, cached atomic.Int32
	renderStart := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Config.Workers)
	for i := range sections {
		sec := sections[i]
		g.Go(func() error {
			key, err := p.segmentKey(sec.Index)
			if err != nil {
				return err
			}
			if p.Cache != nil {
				if path, ok := p.Cache.Lookup(key); ok {
					results[sec.Index] = path
					cached.Add(1)
					fmt.Printf("[>] Cached: %d/%d %s\n", ready.Add(1), len(sections), sec.Title)
					return nil
				}
			}

			segPath := filepath.Join(p.tempDir, fmt.Sprintf("s%d.mp4", sec.Index))
			if err := p.encodeSection(gctx, sec, segPath); err != nil {
				return fmt.Errorf("секция %d %q: %w", sec.Index+1, sec.Title, err)
			}
			if p.Cache != nil {
				stored, err := p.Cache.Store(key, segPath)
				if err != nil {
					log.Printf("[!] Не удалось сохранить в кэш: %v", err)
				} else {
					segPath = stored
				}
			}
			results[sec.Index] = segPath
			fmt.Printf("[>] Ready: %d/%d %s\n", ready.Add(1), len(sections), sec.Title)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	renderEnd := time.Now()

	output := p.OutputPath()
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return err
	}
	fmt.Println("[*] Сборка финального видео...")
	concatStart := time.Now()
	if err := p.Encoder.Concatenate(ctx, results, output, p.tempDir, *p.Config); err != nil {
		return fmt.Errorf("ошибка сборки финального видео: %w", err)
	}

	if p.Config.ShowStats {
		p.report(benchmark{
			total:    time.Since(startTime),
			timeline: timelineEnd.Sub(startTime),
			render:   renderEnd.Sub(renderStart),
			concat:   time.Since(concatStart),
			frames:   tl.FrameCount(),
			sections: len(sections),
			cached:   int(cached.Load()),
		})
	}
	return nil
}

// encodeSection renders every frame of the section straight into ffmpeg.
func (p *VideoProject) encodeSection(ctx context.Context, sec stage.Section, segPath string) error {
	canvas, err := p.newCanvas()
	if err != nil {
		return err
	}
	defer canvas.Close()

	params := config.SegmentParams{
		Width:        p.Config.Width,
		Height:       p.Config.Height,
		FPS:          p.Config.FPS,
		Duration:     sec.Duration(p.Config.FPS),
		FadeDuration: p.Config.FadeDuration,
		Index:        sec.Index,
		Title:        sec.Title,
	}
	frames := func(emit func(image.Image) error) error {
		return sec.Each(func(i int, f scene.Frame) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := canvas.Render(f)
			if err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			defer system.PutImage(img)
			return emit(img)
		})
	}
	return p.Encoder.EncodeSegment(ctx, frames, segPath, params, p.Config.VideoEncoder, p.Config.Quality)
}

// segmentKey hashes the section source together with everything else
// that changes its pixels.
func (p *VideoProject) segmentKey(index int) (string, error) {
	sec, err := yaml.Marshal(p.Script.Sections[index])
	if err != nil {
		return "", err
	}
	shared, err := yaml.Marshal(struct {
		Palette    map[string]string `yaml:"palette"`
		Background string            `yaml:"background"`
	}{p.Script.Palette, p.Script.Background})
	if err != nil {
		return "", err
	}
	settings := fmt.Sprintf("%s|%dx%d@%d|%s|%d|%d", cacheVersion,
		p.Config.Width, p.Config.Height, p.Config.FPS, p.Config.VideoEncoder, p.Config.Quality, p.Config.DPI)

	var stamps []string
	for _, path := range imageSources(p.Script.Sections[index].Objects) {
		st, err := p.Images.Stamp(path)
		if err != nil {
			return "", fmt.Errorf("image %s: %w", path, err)
		}
		stamps = append(stamps, st)
	}
	return cache.Key([]byte(settings), shared, sec, []byte(strings.Join(stamps, "\n"))), nil
}

// imageSources lists the distinct source files the objects load, in order.
func imageSources(specs []director.ObjectSpec) []string {
	var out []string
	seen := make(map[string]bool)
	var walk func([]director.ObjectSpec)
	walk = func(specs []director.ObjectSpec) {
		for _, s := range specs {
			if s.Source != "" && !seen[s.Source] {
				seen[s.Source] = true
				out = append(out, s.Source)
			}
			walk(s.Children)
		}
	}
	walk(specs)
	return out
}

// Stills writes one PNG per section showing its busiest moment.
func (p *VideoProject) Stills(ctx context.Context, dir string) ([]string, error) {
	tl, warnings, err := p.Timeline(ctx)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		log.Printf("[!] %s", w)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	paths := make([]string, len(tl.Sections))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(p.Config.Workers)
	for _, sec := range tl.Sections {
		sec := sec
		g.Go(func() error {
			canvas, err := p.newCanvas()
			if err != nil {
				return err
			}
			defer canvas.Close()
			path := filepath.Join(dir, fmt.Sprintf("%02d_%s.png", sec.Index+1, slug(sec.Title)))
			if err := canvas.SavePNG(sec.Busiest(), path); err != nil {
				return fmt.Errorf("секция %q: %w", sec.Title, err)
			}
			paths[sec.Index] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// SectionDurations returns the length of every section in seconds.
func SectionDurations(sections []stage.Section, fps int) []float64 {
	out := make([]float64, len(sections))
	for i, s := range sections {
		out[i] = s.Duration(fps)
	}
	return out
}

// FitTransition shrinks the transition so it never exceeds half of the
// shortest section.
func FitTransition(durations []float64, fade float64) float64 {
	if len(durations) < 2 || fade <= 0 {
		return fade
	}
	minDur := math.Inf(1)
	for _, d := range durations {
		minDur = math.Min(minDur, d)
	}
	return math.Min(fade, minDur/2)
}

// TotalDuration is the length of the final video: every transition
// overlaps two sections.
func TotalDuration(durations []float64, fade float64) float64 {
	sum := 0.0
	for _, d := range durations {
		sum += d
	}
	if len(durations) > 1 {
		sum -= float64(len(durations)-1) * fade
	}
	return sum
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "_"):
			b.WriteByte('_')
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

type benchmark struct {
	total, timeline, render, concat time.Duration
	frames, sections, cached        int
}

func (p *VideoProject) report(b benchmark) {
	fps := float64(b.frames) / b.total.Seconds()
	memory := system.MemoryReport()
	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Timeline: %.2fs\n"+
			"Rendering + Encoding: %.2fs\n"+
			"Concatenation: %.2fs\n"+
			"Sections: %d (cached %d)\n"+
			"Effective FPS: %.2f\n"+
			"%s\n"+
			"----------------------------\n",
		p.Config.BuildVersion, b.total.Seconds(), b.timeline.Seconds(), b.render.Seconds(), b.concat.Seconds(),
		b.sections, b.cached, fps, memory,
	)
	fmt.Print(report)

	logEntry := fmt.Sprintf("[%s] Build: %s | Script: %s | Sections: %d | Frames: %d | Total: %.2fs | Render: %.2fs | FPS: %.2f | %s\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		p.Script.Name,
		b.sections,
		b.frames,
		b.total.Seconds(),
		b.render.Seconds(),
		fps,
		memory,
	)

	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
		return
	}
	defer f.Close()
	if _, err := f.WriteString(logEntry); err != nil {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
	}
}
