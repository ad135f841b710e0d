package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/HaritsAcheiz/kontakte-extractor/internal/config"
	"github.com/HaritsAcheiz/kontakte-extractor/internal/pipeline"
)

var extractFlags struct {
	location    string
	output      string
	template    string
	format      string
	concurrency int
	strict      bool
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract every business of a location into the output table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyExtractFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		p, err := pipeline.NewFromConfig(cfg)
		if err != nil {
			return eris.Wrap(err, "init pipeline")
		}
		res, err := p.Run(ctx, cfg.Directory.Location, pipeline.ExportOptionsFromConfig(cfg))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d records, %d failures -> %s\n",
			res.RunID, len(res.Records), len(res.Failures), cfg.Export.OutputPath)
		return nil
	},
}

// applyExtractFlags copies explicitly set flags over the loaded config.
func applyExtractFlags(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	if f.Changed("location") {
		c.Directory.Location = extractFlags.location
	}
	if f.Changed("output") {
		c.Export.OutputPath = extractFlags.output
	}
	if f.Changed("template") {
		c.Export.TemplatePath = extractFlags.template
	}
	if f.Changed("format") {
		c.Export.Format = extractFlags.format
	}
	if f.Changed("concurrency") {
		c.Fetch.Concurrency = extractFlags.concurrency
	}
	if f.Changed("strict") {
		c.Fetch.Strict = extractFlags.strict
	}
}

func init() {
	f := extractCmd.Flags()
	f.StringVar(&extractFlags.location, "location", "", "directory location slug (default from config)")
	f.StringVarP(&extractFlags.output, "output", "o", "", "output file (default from config)")
	f.StringVar(&extractFlags.template, "template", "", "template file whose header row defines the columns")
	f.StringVar(&extractFlags.format, "format", "", "output format: csv, ndjson or xlsx")
	f.IntVar(&extractFlags.concurrency, "concurrency", 0, "in-flight requests per batch")
	f.BoolVar(&extractFlags.strict, "strict", false, "abort on the first failed page")
	rootCmd.AddCommand(extractCmd)
}
