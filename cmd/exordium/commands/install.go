package commands

import (
	"runtime"

	"github.com/spf13/cobra"
)

func (c *CLI) newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install every package listed in the requirements manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, err := cmd.Flags().GetString("file")
			if err != nil {
				return err
			}
			parallelism, err := cmd.Flags().GetInt("parallelism")
			if err != nil {
				return err
			}
			return c.app.Install(cmd.Context(), file, parallelism)
		},
	}
	cmd.Flags().IntP("parallelism", "p", runtime.NumCPU(), "Maximum number of concurrent installs")
	return cmd
}
