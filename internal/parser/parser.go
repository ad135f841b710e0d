package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/HaritsAcheiz/kontakte-extractor/internal/models"
)

// structuredDataMarker identifies the LocalBusiness script block.
const structuredDataMarker = `"@type": "LocalBusiness",`

// NoStructuredDataError means no script block on the page carries the
// LocalBusiness marker.
type NoStructuredDataError struct {
	URL string
}

func (e *NoStructuredDataError) Error() string {
	return fmt.Sprintf("%s: no LocalBusiness structured data", e.URL)
}

// PayloadError means the LocalBusiness script block is not valid JSON.
type PayloadError struct {
	URL string
	Err error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("%s: decode structured data: %v", e.URL, e.Err)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

// Extractor maps detail pages onto records of a fixed schema.
type Extractor struct {
	schema []string
	rules  map[string]Rule
}

// New returns an Extractor for schema. Fields without a rule stay empty.
func New(schema []string, rules map[string]Rule) *Extractor {
	s := make([]string, len(schema))
	copy(s, schema)
	return &Extractor{schema: s, rules: rules}
}

func (e *Extractor) Schema() []string {
	out := make([]string, len(e.schema))
	copy(out, e.schema)
	return out
}

// Extract builds one record from a detail page. It fails only when the page
// cannot be parsed or carries no usable structured data; a field whose rule
// finds nothing is left empty.
func (e *Extractor) Extract(page models.DetailPage) (models.Record, error) {
	doc, err := parseDocument(page.Body, page.ContentType)
	if err != nil {
		return models.Record{}, eris.Wrapf(err, "parse %s", page.URL)
	}
	raw, ok := FindPayload(doc)
	if !ok {
		return models.Record{}, &NoStructuredDataError{URL: page.URL}
	}
	payload, err := decodePayload(raw)
	if err != nil {
		return models.Record{}, &PayloadError{URL: page.URL, Err: err}
	}

	rec := models.NewRecord(e.schema)
	src := Source{Payload: payload, Doc: doc}
	for _, field := range e.schema {
		rule, ok := e.rules[field]
		if !ok {
			continue
		}
		if v, ok := rule(src); ok {
			rec.Set(field, v)
		} else {
			zap.L().Debug("field not found", zap.String("url", page.URL), zap.String("field", field))
		}
	}
	return rec, nil
}

// ExtractAll extracts every successfully fetched page. Fetch failures are
// carried over unchanged; outcomes stay in input order.
func (e *Extractor) ExtractAll(pages []models.Outcome[models.DetailPage]) []models.Outcome[models.Record] {
	out := make([]models.Outcome[models.Record], len(pages))
	for i, p := range pages {
		out[i] = models.Outcome[models.Record]{Index: p.Index, URL: p.URL, Err: p.Err}
		if p.Err != nil {
			continue
		}
		out[i].Value, out[i].Err = e.Extract(p.Value)
	}
	return out
}

// FindPayload returns the text of the first script block carrying the
// LocalBusiness marker.
func FindPayload(doc *goquery.Document) (string, bool) {
	var payload string
	found := false
	doc.Find("script").EachWithBreak(func(i int, s *goquery.Selection) bool {
		txt := s.Text()
		if strings.Contains(txt, structuredDataMarker) {
			payload = txt
			found = true
			return false
		}
		return true
	})
	return payload, found
}

// decodePayload keeps numbers as written and rejects anything but
// whitespace after the first value. A payload that is valid JSON but
// not an object yields an empty payload, so every JSON rule misses.
func decodePayload(raw string) (Payload, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, eris.New("trailing data after structured data")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return Payload{}, nil
	}
	return Payload(obj), nil
}

func parseDocument(data []byte, contentType string) (*goquery.Document, error) {
	// Decode to UTF-8 if needed
	enc, _, _ := charset.DetermineEncoding(data, contentType)
	utf8data, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		if !utf8.Valid(data) {
			return nil, err
		}
		utf8data = data
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(utf8data))
}
