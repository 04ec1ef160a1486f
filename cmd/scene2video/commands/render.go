package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ivlev/scene2video/internal/cache"
	"github.com/ivlev/scene2video/internal/engine"
	"github.com/ivlev/scene2video/internal/system"
	"github.com/ivlev/scene2video/internal/video"
)

// render [script.yaml]: build the timeline, encode every section and join them.
func renderCmd(version string) *cobra.Command {
	var background string
	var transition string
	var fade float64

	cmd := &cobra.Command{
		Use:   "render [script.yaml]",
		Short: "Render a script to an MP4 video",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !system.FFmpegAvailable() {
				return fmt.Errorf("ffmpeg не найден в PATH")
			}
			s, path, err := loadScript(args)
			if err != nil {
				return err
			}
			cfg, err := resolveConfig(cmd, s, path)
			if err != nil {
				return err
			}
			cfg.BuildVersion = version
			if cmd.Flags().Changed("transition") {
				cfg.TransitionType = transition
			}
			if cmd.Flags().Changed("fade") {
				cfg.FadeDuration = fade
			}
			if background != "" {
				cfg.BackgroundAudio = background
			}
			resolveAudio(cfg)

			if cfg.VideoEncoder == "" || cfg.VideoEncoder == "auto" {
				cfg.VideoEncoder = system.GetBestH264Encoder()
			}
			if cfg.VideoEncoder != "libx264" {
				fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", cfg.VideoEncoder)
			}
			if cfg.Quality == 0 {
				cfg.Quality = system.DefaultQuality(cfg.VideoEncoder)
			}
			cfg.Workers = system.SuggestWorkers(cfg.Workers, cfg.Width, cfg.Height)

			project := engine.NewVideoProject(cfg, s, &video.FFmpegEncoder{})
			defer project.Close()
			if !cfg.NoCache {
				c, err := cache.New(cfg.CacheDir)
				if err != nil {
					log.Printf("[!] Кэш отключён: %v", err)
				} else {
					project.Cache = c
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			if err := project.Run(ctx); err != nil {
				return err
			}
			fmt.Printf("[+++] Успех! Результат: %s\n", project.OutputPath())
			return nil
		},
	}
	cmd.Flags().StringVar(&audio, "audio", "", "narration track, or \"auto\" for the newest file in input/audio")
	cmd.Flags().StringVar(&background, "background-audio", "", "looped background music")
	cmd.Flags().StringVar(&transition, "transition", "none", "xfade transition between sections: none, fade, wipeleft, slideup, dissolve")
	cmd.Flags().Float64Var(&fade, "fade", 0.5, "transition length in seconds")
	return cmd
}
