package pipeline

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/HaritsAcheiz/kontakte-extractor/internal/config"
	"github.com/HaritsAcheiz/kontakte-extractor/internal/ioformats"
)

// Export formats.
const (
	FormatCSV    = "csv"
	FormatNDJSON = "ndjson"
	FormatXLSX   = "xlsx"
)

// ExportOptions say where and how the table is written.
type ExportOptions struct {
	Path      string
	Format    string
	Delimiter rune
}

// ExportOptionsFromConfig maps the export section of cfg.
func ExportOptionsFromConfig(cfg *config.Config) ExportOptions {
	return ExportOptions{
		Path:      cfg.Export.OutputPath,
		Format:    cfg.Export.Format,
		Delimiter: firstRune(cfg.Export.OutputDelimiter),
	}
}

// Export writes all records of res in one go, replacing any existing file.
func Export(res *Result, opts ExportOptions) error {
	if opts.Path == "" {
		return eris.New("export: output path is empty")
	}
	schema := ioformats.Schema(res.Schema)

	var err error
	switch opts.Format {
	case "", FormatCSV:
		delim := opts.Delimiter
		if delim == 0 {
			delim = ','
		}
		err = ioformats.WriteTable(opts.Path, schema, res.Records, delim)
	case FormatNDJSON:
		err = writeNDJSONFile(opts.Path, res)
	case FormatXLSX:
		err = ioformats.WriteXLSX(opts.Path, schema, res.Records)
	default:
		return eris.Errorf("export: unknown format %q", opts.Format)
	}
	if err != nil {
		return eris.Wrapf(err, "export %s", opts.Path)
	}
	zap.L().Info("exported records",
		zap.String("run_id", res.RunID),
		zap.String("path", opts.Path),
		zap.String("format", opts.Format),
		zap.Int("records", len(res.Records)),
	)
	return nil
}

func writeNDJSONFile(path string, res *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ioformats.WriteNDJSON(f, res.Records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
