// Package cmd assembles the dealboard command tree
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/thenoetrevino/dealboard/internal/cli"
	"github.com/thenoetrevino/dealboard/internal/cli/deal"
	"github.com/thenoetrevino/dealboard/internal/cli/pipeline"
	"github.com/thenoetrevino/dealboard/internal/cli/setup"
	"github.com/thenoetrevino/dealboard/internal/cli/tutorial"
	"github.com/thenoetrevino/dealboard/internal/logging"
)

// NewRootCmd builds the dealboard root command with every subcommand attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dealboard",
		Short: "Dealboard - a sales pipeline kanban board",
		Long: `Dealboard keeps deals on a board of pipeline stages.

Create deals, move them between stages, search the board and read pipeline
totals. Every command supports --json and --quiet for scripting.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := logging.Init(); err != nil {
				logging.Discard()
			}
		},
	}

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return cli.NewFormatter(cmd).Usage(err.Error(), "Run '"+cmd.CommandPath()+" --help' for usage")
	})
	rootCmd.PersistentFlags().StringVar(&cli.ConfigPath, "config", "", "Config file (default $XDG_CONFIG_HOME/dealboard/config.yaml)")

	rootCmd.AddCommand(deal.DealCmd())
	rootCmd.AddCommand(deal.ImportCmd())
	rootCmd.AddCommand(pipeline.BoardCmd())
	rootCmd.AddCommand(pipeline.MoveCmd())
	rootCmd.AddCommand(pipeline.StatsCmd())
	rootCmd.AddCommand(pipeline.ExportCmd())
	rootCmd.AddCommand(pipeline.ReorderCmd())
	rootCmd.AddCommand(setup.SetupCmd())
	rootCmd.AddCommand(tutorial.TutorialCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
