package cmd

import (
	"errors"
	"fmt"
	"strings"

	infralogger "github.com/Hosseinjeff/Wholesale-project/infrastructure/logger"
	"github.com/Hosseinjeff/Wholesale-project/internal/bootstrap"
	"github.com/Hosseinjeff/Wholesale-project/internal/ingest"
	"github.com/Hosseinjeff/Wholesale-project/internal/telegram"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func backfillCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "backfill <channel>",
		Short: "Ingest recent posts from a public channel preview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New(cmd.Context(), cfgFile)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			channel := strings.TrimPrefix(args[0], "@")
			reader := telegram.NewReader(telegram.Config{
				BaseURL:   app.Config.Telegram.BaseURL,
				Timeout:   app.Config.Telegram.Timeout,
				UserAgent: app.Config.Telegram.UserAgent,
				Retry:     app.Config.Ingest.Retry,
			}, app.Log)

			posts, err := reader.Backfill(ctx, channel, limit)
			if err != nil {
				return fmt.Errorf("backfill %s: %w", channel, err)
			}

			counts := map[string]int{}
			for _, post := range posts {
				if strings.TrimSpace(post.Text) == "" {
					counts["empty"]++
					continue
				}
				out, ingestErr := app.Ingest.Ingest(ctx, post.Payload())
				if errors.Is(ingestErr, ingest.ErrPaused) {
					return ingestErr
				}
				if ingestErr != nil {
					app.Log.Warn("Backfill post failed",
						infralogger.Channel(channel),
						infralogger.Int("post", post.ID),
						infralogger.Error(ingestErr),
					)
				}
				counts[out.Status]++
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Status", "Posts"})
			for _, status := range []string{
				ingest.StatusSuccess, ingest.StatusDuplicate, ingest.StatusNoProducts, ingest.StatusNonProduct,
				ingest.StatusInvalid, ingest.StatusBusy, ingest.StatusError, "empty",
			} {
				if counts[status] > 0 {
					t.AppendRow(table.Row{status, counts[status]})
				}
			}
			t.AppendFooter(table.Row{"Total", len(posts)})
			t.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of posts to ingest (0 for the whole history)")
	return cmd
}
