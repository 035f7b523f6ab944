// Package cmd implements the wholesale command-line interface.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// cfgFile holds the path to the configuration file. Empty falls back to
// CONFIG_PATH and then ./config.yml.
var cfgFile string

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "wholesale",
		Short:         "Telegram marketplace product extraction",
		Long:          `Extracts structured product listings from Persian and English marketplace channel messages.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $CONFIG_PATH or ./config.yml)")

	root.AddCommand(
		serveCommand(),
		extractCommand(),
		replayCommand(),
		exportCommand(),
		migrateCommand(),
		backfillCommand(),
		tokenCommand(),
	)
	return root
}

// Execute runs the root command until it finishes or a signal arrives.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}
