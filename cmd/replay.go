package cmd

import (
	"fmt"

	"github.com/Hosseinjeff/Wholesale-project/internal/bootstrap"
	"github.com/Hosseinjeff/Wholesale-project/internal/ingest"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func replayCommand() *cobra.Command {
	var opts ingest.ReplayOptions
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Reprocess stored messages under fresh ids",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := bootstrap.New(cmd.Context(), cfgFile)
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.Ingest.Replay(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("replay: %w", err)
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Total", "Unique", "Processed", "Skipped", "Failed", "Products"})
			t.AppendRow(table.Row{report.Total, report.Unique, report.Processed, report.Skipped, report.Failed, report.Products})
			t.Render()
			for _, e := range report.Errors {
				fmt.Fprintln(cmd.ErrOrStderr(), e)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Channel, "channel", "", "only replay messages from this channel")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of stored messages to read (0 for all)")
	cmd.Flags().BoolVar(&opts.Resume, "resume", false, "resume ingestion before replaying")
	return cmd
}
