package parser

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Output columns of the contact template.
const (
	FieldCompany          = "Firma"
	FieldStreet           = "Straße"
	FieldHouseNumber      = "Hausnummer"
	FieldPhone            = "Telefon"
	FieldFax              = "Fax Büro"
	FieldMobile           = "Mobil"
	FieldOfficeStreet     = "Straße Büro"
	FieldOfficePostalCode = "PLZ Büro"
	FieldPostalCode       = "PLZ"
	FieldWebsite          = "Webseite"
	FieldCity             = "Ort"
	FieldCountry          = "Land"
	FieldEmail            = "E-Mail"
)

const emailSelector = "a#m-textLink24"

// Payload is the decoded LocalBusiness structured data of a detail page.
type Payload map[string]any

// Source is what a rule may read from: the structured data and the parsed
// page it was found in.
type Source struct {
	Payload Payload
	Doc     *goquery.Document
}

// Rule extracts one field. ok is false when the page has no usable value.
type Rule func(src Source) (value string, ok bool)

// DefaultRules returns the rule set of the contact template. country is the
// constant written to the country column.
func DefaultRules(country string) map[string]Rule {
	return map[string]Rule{
		FieldCompany:          jsonField("name"),
		FieldStreet:           streetName,
		FieldHouseNumber:      houseNumber,
		FieldPhone:            jsonField("telephone"),
		FieldFax:              jsonField("faxNumber"),
		FieldMobile:           jsonField("mobile"),
		FieldOfficeStreet:     jsonField("address", "streetAddress"),
		FieldOfficePostalCode: jsonField("address", "postalCode"),
		FieldPostalCode:       jsonField("address", "postalCode"),
		FieldWebsite:          jsonField("url"),
		FieldCity:             jsonField("address", "addressLocality"),
		FieldCountry:          constant(country),
		FieldEmail:            elementText(emailSelector),
	}
}

// lookup walks nested objects along path.
func (p Payload) lookup(path ...string) (any, bool) {
	var cur any = map[string]any(p)
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// stringify renders a scalar the way it appears in the source. null counts
// as absent.
func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

func jsonField(path ...string) Rule {
	return func(src Source) (string, bool) {
		v, ok := src.Payload.lookup(path...)
		if !ok {
			return "", false
		}
		return stringify(v)
	}
}

func constant(v string) Rule {
	return func(Source) (string, bool) { return v, true }
}

func elementText(selector string) Rule {
	return func(src Source) (string, bool) {
		if src.Doc == nil {
			return "", false
		}
		sel := src.Doc.Find(selector).First()
		if sel.Length() == 0 {
			return "", false
		}
		return strings.TrimSpace(sel.Text()), true
	}
}

func streetAddress(src Source) (string, bool) {
	v, ok := src.Payload.lookup("address", "streetAddress")
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// splitStreet splits off the last space-separated token as the house number.
// An address without a space has no house number.
func splitStreet(addr string) (street, number string, hasNumber bool) {
	i := strings.LastIndex(addr, " ")
	if i < 0 {
		return addr, "", false
	}
	return addr[:i], addr[i+1:], true
}

func streetName(src Source) (string, bool) {
	addr, ok := streetAddress(src)
	if !ok {
		return "", false
	}
	street, _, _ := splitStreet(addr)
	return street, true
}

func houseNumber(src Source) (string, bool) {
	addr, ok := streetAddress(src)
	if !ok {
		return "", false
	}
	_, number, ok := splitStreet(addr)
	return number, ok
}
