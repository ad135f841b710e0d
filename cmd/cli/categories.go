package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/HaritsAcheiz/kontakte-extractor/internal/config"
	"github.com/HaritsAcheiz/kontakte-extractor/internal/crawler"
	"github.com/HaritsAcheiz/kontakte-extractor/internal/directory"
	"github.com/HaritsAcheiz/kontakte-extractor/internal/ioformats"
)

var categoriesLocation string

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the categories of a location with their page counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		location := cfg.Directory.Location
		if categoriesLocation != "" {
			location = categoriesLocation
		}

		dir, err := newDirectory(cfg)
		if err != nil {
			return err
		}
		links, err := dir.Categories(ctx, location)
		if err != nil {
			return eris.Wrap(err, "category discovery")
		}
		pages, err := dir.ProbePages(ctx, links)
		if err != nil {
			return eris.Wrap(err, "pagination probe")
		}
		return ioformats.WriteNDJSON(cmd.OutOrStdout(), pages)
	},
}

func newDirectory(c *config.Config) (*directory.Client, error) {
	hc := crawler.NewHTTPClient(crawler.Options{
		UserAgent:  c.Fetch.UserAgent,
		Timeout:    c.Fetch.Timeout(),
		SizeCap:    c.Fetch.MaxBodyBytes,
		RatePerSec: c.Fetch.RatePerSec,
	})
	return directory.New(hc, c.Directory.BaseURL, c.Fetch.Concurrency)
}

func init() {
	categoriesCmd.Flags().StringVar(&categoriesLocation, "location", "", "directory location slug (default from config)")
	rootCmd.AddCommand(categoriesCmd)
}
