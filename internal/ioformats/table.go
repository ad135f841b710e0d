package ioformats

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/HaritsAcheiz/kontakte-extractor/internal/models"
)

// WriteTable writes a header row and one row per record to path, replacing
// any existing file.
func WriteTable(path string, schema Schema, recs []models.Record, delim rune) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "table: create")
	}
	if err := EncodeTable(f, schema, recs, delim); err != nil {
		f.Close()
		return err
	}
	return eris.Wrap(f.Close(), "table: close")
}

// EncodeTable writes the table to w.
func EncodeTable(w io.Writer, schema Schema, recs []models.Record, delim rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delim
	if err := cw.Write(schema); err != nil {
		return eris.Wrap(err, "table: write header")
	}
	row := make([]string, len(schema))
	for _, rec := range recs {
		for i, f := range schema {
			row[i] = rec.Get(f)
		}
		if err := writeRow(w, cw, row); err != nil {
			return eris.Wrap(err, "table: write row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "table: flush")
}

// writeRow writes one record. csv.Writer renders a lone empty field as a
// blank line, which csv.Reader skips, so that row is written quoted.
func writeRow(w io.Writer, cw *csv.Writer, row []string) error {
	if len(row) != 1 || row[0] != "" {
		return cw.Write(row)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\"\"\n")
	return err
}

// ReadTable reads a table written by WriteTable.
func ReadTable(path string, delim rune) (Schema, []models.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "table: open")
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.Comma = delim
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, eris.Wrap(err, "table: read")
	}
	if len(rows) == 0 {
		return nil, nil, eris.New("table: empty file")
	}
	schema := Schema(rows[0])
	recs := make([]models.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := models.NewRecord(schema)
		for i, v := range row {
			rec.Set(schema[i], v)
		}
		recs = append(recs, rec)
	}
	return schema, recs, nil
}
