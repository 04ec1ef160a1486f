package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/director"
	"github.com/ivlev/scene2video/internal/scripts"
	"github.com/ivlev/scene2video/internal/system"
)

// Default locations relative to the working directory.
const (
	scriptsDir = "scripts"
	audioDir   = "input/audio"
)

var (
	configPath string
	preset     string
	quality    int
	workers    int
	noCache    bool
	output     string
	fps        int
	width      int
	height     int
	stats      bool
	verbose    bool
	builtin    string
	audio      string
)

func Execute(version string) error {
	root := &cobra.Command{
		Use:           "scene2video",
		Short:         "Render scripted explainer animations to video",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			system.InitResourceLimits()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML file with render settings")
	pf.StringVar(&preset, "preset", "", "quality preset: low, medium, high, production, fourk")
	pf.IntVar(&quality, "quality", 0, "encoder quality (0 = encoder default)")
	pf.IntVarP(&workers, "workers", "j", 0, "parallel sections (0 = CPU count)")
	pf.BoolVar(&noCache, "no-cache", false, "re-render every section")
	pf.StringVarP(&output, "output", "o", "", "output video path")
	pf.IntVar(&fps, "fps", 0, "frame rate override")
	pf.IntVar(&width, "width", 0, "width override")
	pf.IntVar(&height, "height", 0, "height override")
	pf.BoolVar(&stats, "stats", false, "print the performance report")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log every step")
	pf.StringVar(&builtin, "builtin", "", "use a bundled script instead of a file")

	root.AddCommand(renderCmd(version), stillsCmd(), validateCmd(), listCmd(), exportCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[-] Ошибка: %v\n", err)
		return err
	}
	return nil
}

// loadScript resolves the script from --builtin, the argument or the newest
// file in scripts/.
func loadScript(args []string) (*director.Script, string, error) {
	if builtin != "" {
		if len(args) > 0 {
			return nil, "", fmt.Errorf("--builtin and a script path are mutually exclusive")
		}
		s, err := scripts.Load(builtin)
		return s, "", err
	}

	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		latest, err := director.FindLatestScript(scriptsDir)
		if err != nil {
			return nil, "", fmt.Errorf("%w. Укажите путь к сценарию или --builtin", err)
		}
		path = latest
		fmt.Printf("[*] Выбран сценарий: %s\n", path)
	}
	s, err := director.ReadScript(path)
	if err != nil {
		return nil, "", err
	}
	return s, path, nil
}

// resolveConfig layers defaults, preset, config file, script settings and
// command line flags.
func resolveConfig(cmd *cobra.Command, s *director.Script, scriptPath string) (*config.Config, error) {
	cfg := config.Default()

	name := preset
	if name == "" {
		name = cfg.Preset
	}
	if err := cfg.ApplyPreset(name); err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := cfg.LoadFile(configPath); err != nil {
			return nil, err
		}
	}

	// An explicit preset wins over the resolution the script asks for.
	if preset == "" {
		if s.Width > 0 && s.Height > 0 {
			cfg.Width, cfg.Height = s.Width, s.Height
		}
		if s.FPS > 0 {
			cfg.FPS = s.FPS
		}
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Width = width
	}
	if flags.Changed("height") {
		cfg.Height = height
	}
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Changed("workers") && workers > 0 {
		cfg.Workers = workers
	}
	if flags.Changed("quality") {
		cfg.Quality = quality
	}
	if output != "" {
		cfg.OutputVideo = output
	}
	cfg.NoCache = cfg.NoCache || noCache
	cfg.ShowStats = cfg.ShowStats || stats
	cfg.Verbose = cfg.Verbose || verbose
	cfg.ScriptPath = scriptPath

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveAudio handles --audio auto and reports the narration length.
func resolveAudio(cfg *config.Config) {
	if audio == "auto" {
		latest, err := system.FindLatestAudio(audioDir)
		if err != nil {
			fmt.Printf("[!] Аудио не найдено в %s\n", audioDir)
			cfg.AudioPath = ""
			return
		}
		cfg.AudioPath = latest
		fmt.Printf("[*] Выбрано аудио: %s\n", latest)
	} else if audio != "" {
		cfg.AudioPath = audio
	}
	if cfg.AudioPath == "" {
		return
	}
	if abs, err := filepath.Abs(cfg.AudioPath); err == nil {
		cfg.AudioPath = abs
	}
	if d, err := system.GetAudioDuration(cfg.AudioPath); err == nil {
		fmt.Printf("[*] Длительность аудио: %.2fs\n", d)
	}
}
