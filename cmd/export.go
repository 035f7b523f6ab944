package cmd

import (
	"fmt"
	"time"

	"github.com/Hosseinjeff/Wholesale-project/internal/bootstrap"
	"github.com/Hosseinjeff/Wholesale-project/internal/database"
	"github.com/Hosseinjeff/Wholesale-project/internal/export"
	"github.com/spf13/cobra"
)

func exportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write products and messages to an xlsx workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := bootstrap.New(cmd.Context(), cfgFile)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			products, err := app.Store.AllProducts(ctx)
			if err != nil {
				return fmt.Errorf("load products: %w", err)
			}
			messages, err := app.Store.ListMessages(ctx, database.MessageFilter{})
			if err != nil {
				return fmt.Errorf("load messages: %w", err)
			}

			if output == "" {
				output = "wholesale-" + time.Now().UTC().Format("20060102-150405") + ".xlsx"
			}
			if err = export.Save(output, products, messages); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d products and %d messages to %s\n", len(products), len(messages), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default wholesale-<timestamp>.xlsx)")
	return cmd
}
