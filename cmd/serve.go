package cmd

import (
	"github.com/Hosseinjeff/Wholesale-project/internal/bootstrap"
	"github.com/spf13/cobra"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook and operations HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bootstrap.Start(cmd.Context(), cfgFile)
		},
	}
}
