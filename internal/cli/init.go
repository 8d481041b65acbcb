package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/effieaponniah/Arrythmia-Detect/internal/infra/fsworkspace"
	"github.com/effieaponniah/Arrythmia-Detect/internal/usecase"
)

func initCmd() *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "init [dir]",
		Short: "Scaffold an ecgwatch workspace (ecgwatch.yaml, windows/, runs/, demo capture)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			root, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("invalid workspace path: %w", err)
			}

			if err := usecase.NewInitWorkspace(fsworkspace.NewInitializer()).Execute(root, force); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "workspace ready at %s\n", root)
			fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("next: ecgwatch validate && ecgwatch replay --file captures/demo.txt"))
			return nil
		},
	}

	c.Flags().BoolVar(&force, "force", false, "Overwrite existing scaffold files")
	return c
}
