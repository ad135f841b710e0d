package ioformats

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/HaritsAcheiz/kontakte-extractor/internal/models"
)

const sheetName = "Kontakte"

// WriteXLSX writes the table as a single-sheet workbook, replacing any
// existing file.
func WriteXLSX(path string, schema Schema, recs []models.Record) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}
	addRow(sheet, schema)
	vals := make([]string, len(schema))
	for _, rec := range recs {
		for i, field := range schema {
			vals[i] = rec.Get(field)
		}
		addRow(sheet, vals)
	}
	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "xlsx: save")
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, vals []string) {
	row := sheet.AddRow()
	for _, v := range vals {
		// strings only: postal codes and phone numbers keep leading zeros
		row.AddCell().SetString(v)
	}
}

// ReadXLSX reads a workbook written by WriteXLSX.
func ReadXLSX(path string) (Schema, []models.Record, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "xlsx: open file")
	}
	sheet, ok := f.Sheet[sheetName]
	if !ok {
		return nil, nil, eris.Errorf("xlsx: sheet %q not found", sheetName)
	}
	if len(sheet.Rows) == 0 {
		return nil, nil, eris.New("xlsx: empty sheet")
	}
	var schema Schema
	for _, c := range sheet.Rows[0].Cells {
		schema = append(schema, c.String())
	}
	recs := make([]models.Record, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		rec := models.NewRecord(schema)
		for i, c := range row.Cells {
			if i < len(schema) {
				rec.Set(schema[i], c.String())
			}
		}
		recs = append(recs, rec)
	}
	return schema, recs, nil
}
