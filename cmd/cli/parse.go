package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/HaritsAcheiz/kontakte-extractor/internal/ioformats"
	"github.com/HaritsAcheiz/kontakte-extractor/internal/models"
	"github.com/HaritsAcheiz/kontakte-extractor/internal/pipeline"
)

var parseOutput string

var parseCmd = &cobra.Command{
	Use:   "parse FILE...",
	Short: "Extract records from saved detail pages",
	Long:  "Runs extraction on HTML files already on disk. Records go to stdout as NDJSON unless --output is set.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pages := make([]models.DetailPage, 0, len(args))
		for _, path := range args {
			body, err := os.ReadFile(path)
			if err != nil {
				return eris.Wrapf(err, "read %s", path)
			}
			pages = append(pages, models.DetailPage{URL: path, Body: body})
		}

		p, err := pipeline.NewFromConfig(cfg)
		if err != nil {
			return eris.Wrap(err, "init pipeline")
		}
		res, err := p.ExtractPages(pages)
		if err != nil {
			return err
		}

		if parseOutput == "" {
			return ioformats.WriteNDJSON(cmd.OutOrStdout(), res.Records)
		}
		exp := pipeline.ExportOptionsFromConfig(cfg)
		exp.Path = parseOutput
		return pipeline.Export(res, exp)
	},
}

func init() {
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "", "write the table here instead of stdout")
	rootCmd.AddCommand(parseCmd)
}
