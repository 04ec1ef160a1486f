package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivlev/scene2video/internal/director"
)

// validate [script.yaml]: dry run against the recording stage.
func validateCmd() *cobra.Command {
	var calls bool
	cmd := &cobra.Command{
		Use:   "validate [script.yaml]",
		Short: "Check a script without rendering it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := loadScript(args)
			if err != nil {
				return err
			}
			rec, warnings, err := director.Validate(context.Background(), s)
			for _, w := range warnings {
				fmt.Printf("[!] %s\n", w)
			}
			if err != nil {
				return err
			}
			if calls {
				for _, c := range rec.Calls {
					fmt.Println("   ", c)
				}
			}
			_, _, fps := s.Resolution()
			fmt.Printf("[+++] %s: секций %d, %.1fs, предупреждений %d\n",
				s.Name, len(rec.Sections), float64(rec.Frames())/float64(fps), len(warnings))
			return nil
		},
	}
	cmd.Flags().BoolVar(&calls, "calls", false, "print every recorded stage call")
	return cmd
}
