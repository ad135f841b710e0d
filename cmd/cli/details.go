package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/HaritsAcheiz/kontakte-extractor/internal/ioformats"
	"github.com/HaritsAcheiz/kontakte-extractor/internal/pipeline"
)

var detailsInput string

var detailsCmd = &cobra.Command{
	Use:   "details",
	Short: "Extract records from a file of detail page links",
	Long:  "Reads detail links from a csv (url or detailLink column) or ndjson file and skips discovery and listing.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if detailsInput == "" {
			return eris.New("--input is required")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		links, err := ioformats.ReadLinks(detailsInput)
		if err != nil {
			return err
		}
		p, err := pipeline.NewFromConfig(cfg)
		if err != nil {
			return eris.Wrap(err, "init pipeline")
		}
		res, err := p.CollectLinks(ctx, links)
		if err != nil {
			return err
		}
		if err := pipeline.Export(res, pipeline.ExportOptionsFromConfig(cfg)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d records, %d failures -> %s\n",
			res.RunID, len(res.Records), len(res.Failures), cfg.Export.OutputPath)
		return nil
	},
}

func init() {
	detailsCmd.Flags().StringVarP(&detailsInput, "input", "i", "", "csv or ndjson file with detail links")
	rootCmd.AddCommand(detailsCmd)
}
