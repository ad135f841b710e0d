package classifier

import (
	"testing"

	"github.com/HaritsAcheiz/kontakte-extractor/internal/models"
	"github.com/HaritsAcheiz/kontakte-extractor/internal/parser"
)

var fields = []string{parser.FieldCompany, parser.FieldStreet, parser.FieldPostalCode, parser.FieldCity, parser.FieldPhone, parser.FieldEmail}

func TestClassify(t *testing.T) {
	cl := New()

	rec := models.NewRecord(fields)
	rec.Set(parser.FieldPhone, "0891234")
	c := cl.Classify(rec)
	if c.Label != LabelReachable {
		t.Fatalf("want reachable, got %s", c.Label)
	}
	if _, ok := c.Reason[parser.FieldPhone]; !ok {
		t.Fatalf("missing phone reason: %#v", c.Reason)
	}

	addr := models.NewRecord(fields)
	addr.Set(parser.FieldStreet, "Musterweg")
	addr.Set(parser.FieldCity, "München")
	if c := cl.Classify(addr); c.Label != LabelAddressOnly {
		t.Fatalf("want address-only, got %s", c.Label)
	}

	empty := models.NewRecord(fields)
	empty.Set(parser.FieldCompany, "Acme")
	if c := cl.Classify(empty); c.Label != LabelSparse {
		t.Fatalf("want sparse, got %s", c.Label)
	}

	// whitespace is not data
	blank := models.NewRecord(fields)
	blank.Set(parser.FieldEmail, "  ")
	if c := cl.Classify(blank); c.Label != LabelSparse {
		t.Fatalf("want sparse for blank email, got %s", c.Label)
	}
}

func TestTallyAndMissing(t *testing.T) {
	cl := New()
	a := models.NewRecord(fields)
	a.Set(parser.FieldEmail, "a@example.com")
	b := models.NewRecord(fields)

	tally := cl.Tally([]models.Record{a, b, b})
	if tally[LabelReachable] != 1 || tally[LabelSparse] != 2 {
		t.Fatalf("unexpected tally: %#v", tally)
	}

	missing := MissingFields(a)
	if len(missing) != len(fields)-1 {
		t.Fatalf("unexpected missing fields: %#v", missing)
	}
	for _, f := range missing {
		if f == parser.FieldEmail {
			t.Fatal("email reported missing")
		}
	}
}
