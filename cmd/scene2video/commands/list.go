package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/scripts"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List bundled scripts and quality presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Built-in scripts:")
			for _, name := range scripts.List() {
				s, err := scripts.Load(name)
				if err != nil {
					return err
				}
				fmt.Printf("  %-14s %d sections  %s\n", name, len(s.Sections), s.Title)
			}
			fmt.Println("Presets:")
			for _, name := range config.PresetNames() {
				p := config.Presets[name]
				fmt.Printf("  %-14s %dx%d@%d\n", name, p.Width, p.Height, p.FPS)
			}
			return nil
		},
	}
}
