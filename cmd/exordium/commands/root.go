// Package commands implements the CLI commands for the exordium package installer.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/exordium/internal/app"
	"go.trai.ch/exordium/internal/build"
)

// CLI represents the command line interface for exordium.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "exordium",
		Short:         "A package installer driven by a requirements manifest",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("file", "f", "requirements.txt", "Path to the requirements manifest")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newInstallCmd())
	rootCmd.AddCommand(c.newPlanCmd())
	rootCmd.AddCommand(c.newVerifyCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOut redirects command output. Used for testing.
func (c *CLI) SetOut(w io.Writer) {
	c.rootCmd.SetOut(w)
}
