package classifier

import (
	"sort"
	"strings"

	"github.com/HaritsAcheiz/kontakte-extractor/internal/models"
	"github.com/HaritsAcheiz/kontakte-extractor/internal/parser"
)

// Labels, from most to least useful for outreach.
const (
	LabelReachable   = "reachable"
	LabelAddressOnly = "address-only"
	LabelSparse      = "sparse"
)

type Classifier struct{}

func New() *Classifier { return &Classifier{} }

var channelFields = []string{parser.FieldPhone, parser.FieldMobile, parser.FieldEmail}
var addressFields = []string{parser.FieldStreet, parser.FieldPostalCode, parser.FieldCity}

// Classify labels a record by the contact data it actually carries. Fields
// missing from the record's schema count as empty.
func (c *Classifier) Classify(rec models.Record) models.Classification {
	reason := map[string]string{}

	for _, f := range channelFields {
		if strings.TrimSpace(rec.Get(f)) != "" {
			reason[f] = "contact channel present"
		}
	}
	if len(reason) > 0 {
		return models.Classification{Label: LabelReachable, Reason: reason}
	}

	// address signals: street and either postal code or city
	if filled(rec, parser.FieldStreet) && (filled(rec, parser.FieldPostalCode) || filled(rec, parser.FieldCity)) {
		for _, f := range addressFields {
			if filled(rec, f) {
				reason[f] = "address part present"
			}
		}
		return models.Classification{Label: LabelAddressOnly, Reason: reason}
	}

	return models.Classification{Label: LabelSparse, Reason: reason}
}

// Tally counts records per label.
func (c *Classifier) Tally(recs []models.Record) map[string]int {
	out := map[string]int{}
	for _, r := range recs {
		out[c.Classify(r).Label]++
	}
	return out
}

// MissingFields lists the schema fields a record left empty, sorted.
func MissingFields(rec models.Record) []string {
	var out []string
	for _, f := range rec.Fields() {
		if !filled(rec, f) {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

func filled(rec models.Record, field string) bool {
	return strings.TrimSpace(rec.Get(field)) != ""
}
