package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ivlev/scene2video/internal/engine"
	"github.com/ivlev/scene2video/internal/video"
)

// stills [script.yaml]: one PNG per section, without ffmpeg.
func stillsCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "stills [script.yaml]",
		Short: "Save the busiest frame of every section as PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, path, err := loadScript(args)
			if err != nil {
				return err
			}
			cfg, err := resolveConfig(cmd, s, path)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = filepath.Join(cfg.OutputDir, s.Name+"_stills")
			}

			project := engine.NewVideoProject(cfg, s, &video.FFmpegEncoder{})
			defer project.Close()
			paths, err := project.Stills(context.Background(), dir)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Printf("[>] %s\n", p)
			}
			fmt.Printf("[+++] Сохранено кадров: %d в %s\n", len(paths), dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default <output_dir>/<name>_stills)")
	return cmd
}
