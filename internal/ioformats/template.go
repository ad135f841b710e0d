package ioformats

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// Schema is the ordered list of output columns every record carries.
type Schema []string

// DefaultSchema is the contact template used when no template file is
// configured.
var DefaultSchema = Schema{
	"Firma", "Straße", "Hausnummer", "PLZ", "Ort", "Land",
	"Telefon", "Mobil", "Fax Büro", "E-Mail", "Webseite", "Straße Büro", "PLZ Büro",
}

// LoadTemplate reads the header row of a delimited template file. An empty
// path returns a copy of DefaultSchema.
func LoadTemplate(path string, delim rune) (Schema, error) {
	if path == "" {
		out := make(Schema, len(DefaultSchema))
		copy(out, DefaultSchema)
		return out, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "template: open")
	}
	defer f.Close()
	return ReadTemplate(f, delim)
}

// ReadTemplate parses the header row from r.
func ReadTemplate(r io.Reader, delim rune) (Schema, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, eris.New("template: empty file")
	}
	if err != nil {
		return nil, eris.Wrap(err, "template: read header")
	}

	seen := make(map[string]bool, len(header))
	schema := make(Schema, 0, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, eris.Errorf("template: column %d has no name", i+1)
		}
		if seen[h] {
			return nil, eris.Errorf("template: duplicate column %q", h)
		}
		seen[h] = true
		schema = append(schema, h)
	}
	return schema, nil
}
