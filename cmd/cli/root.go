package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HaritsAcheiz/kontakte-extractor/internal/config"
	"github.com/HaritsAcheiz/kontakte-extractor/pkg/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "kontakte",
	Short:         "Business directory contact extractor",
	Long:          "Walks the category listings of a directory location, extracts contact records from every business detail page and writes them as a table.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
			return eris.Wrap(err, "init logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
