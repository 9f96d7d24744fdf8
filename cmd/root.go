package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the promotion command tree. Running it without a
// subcommand starts the bot.
func NewRootCommand(ctx context.Context) *cobra.Command {
	root := &cobra.Command{
		Use:   "promotion",
		Short: "Announce role grants in Discord channels",
		Long: `Promotion posts templated messages to configured channels whenever a
server member receives a configured role.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(ctx)
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Start the bot (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return Run(ctx)
			},
		},
		newMigrateCommand(),
		newAssignmentsCommand(ctx),
	)

	return root
}

// Execute runs the root command with os.Args
func Execute(ctx context.Context) error {
	return NewRootCommand(ctx).ExecuteContext(ctx)
}
