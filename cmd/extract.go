package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	infralogger "github.com/Hosseinjeff/Wholesale-project/infrastructure/logger"
	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
	"github.com/Hosseinjeff/Wholesale-project/internal/pipeline"
	"github.com/Hosseinjeff/Wholesale-project/internal/profile"
	"github.com/Hosseinjeff/Wholesale-project/internal/quality"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type extractOptions struct {
	channel      string
	username     string
	profilesPath string
	asJSON       bool
}

func extractCommand() *cobra.Command {
	var opts extractOptions
	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract products from a message without storing anything",
		Long:  `Reads message text from file, or stdin when no file is given, and prints the extracted records.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			res, err := runExtract(cmd, text, opts)
			if err != nil {
				return err
			}
			if opts.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			renderResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.channel, "channel", "", "channel display name")
	cmd.Flags().StringVar(&opts.username, "username", "", "channel username used for profile lookup")
	cmd.Flags().StringVar(&opts.profilesPath, "profiles", "", "channel profile file (default built-in profiles)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the full result as JSON")
	return cmd
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(b), nil
}

func runExtract(cmd *cobra.Command, text string, opts extractOptions) (pipeline.Result, error) {
	reg := profile.Default()
	if opts.profilesPath != "" {
		loaded, err := profile.LoadFile(opts.profilesPath)
		if err != nil {
			return pipeline.Result{}, err
		}
		reg = loaded
	}

	log := infralogger.NewNop()
	extractor := pipeline.New(profile.NewStore(reg, log), quality.NewChecker(quality.Config{}), nil, log)

	now := time.Now()
	msg := domain.RawMessage{
		ID:              "cli_" + strconv.FormatInt(now.UnixMilli(), 10),
		Channel:         opts.channel,
		ChannelUsername: opts.username,
		Text:            text,
		ReceivedAt:      now,
		ImportedAt:      now,
	}
	if msg.ChannelIdentifier() == "" {
		msg.Channel = "cli"
	}
	return extractor.Extract(cmd.Context(), msg)
}

func renderResult(w io.Writer, res pipeline.Result) {
	fmt.Fprintf(w, "Classification: %s (%.2f)  Profile: %s  Segments: %d\n",
		res.Classification.Type, res.Classification.Confidence, res.Profile, res.Segments)
	if len(res.Records) == 0 {
		fmt.Fprintln(w, "No products found")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Sale", "Consumer", "Type", "Packaging", "Stock", "Confidence", "Status"})
	for i := range res.Records {
		r := &res.Records[i]
		t.AppendRow(table.Row{
			r.Name,
			r.SalePrice,
			optionalPrice(r.ConsumerPrice),
			r.PriceType,
			r.Packaging,
			r.StockStatus,
			fmt.Sprintf("%.2f", r.ExtractionConfidence),
			r.Status,
		})
	}
	t.Render()
}

func optionalPrice(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}
