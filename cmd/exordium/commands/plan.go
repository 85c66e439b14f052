package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Resolve the manifest and print the install plan without installing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, err := cmd.Flags().GetString("file")
			if err != nil {
				return err
			}
			return c.app.Plan(cmd.Context(), file, cmd.OutOrStdout())
		},
	}
}
