package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rpgo/lifecastor/internal/config"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write an example plan file (YAML, TOML or JSON by extension)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := DefaultPlanFile
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			parser := config.NewInputParser()
			if err := parser.SaveParameters(parser.CreateExampleParameters(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  Wrote example plan to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}
