package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ivlev/scene2video/internal/director"
	"github.com/ivlev/scene2video/internal/scripts"
)

// export <name> [path]: copy a bundled script out for editing.
func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <name> [path]",
		Short: "Write a bundled script to a YAML file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := scripts.Raw(args[0])
			if err != nil {
				return err
			}
			var path string
			if len(args) == 2 {
				path = args[1]
			} else {
				path = director.GenerateScriptPath(scriptsDir, args[0])
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("failed to write script: %w", err)
			}
			fmt.Printf("[+++] Сценарий сохранён: %s\n", path)
			return nil
		},
	}
}
