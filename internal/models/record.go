package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Record is one exported contact row. It always carries exactly the fields
// of the schema it was created from, in schema order.
type Record struct {
	fields []string
	values map[string]string
}

// NewRecord returns a record with every field set to the empty string.
func NewRecord(fields []string) Record {
	r := Record{
		fields: fields,
		values: make(map[string]string, len(fields)),
	}
	for _, f := range fields {
		r.values[f] = ""
	}
	return r
}

// Set assigns v to field. Fields outside the schema are ignored and Set
// reports false. CRLF line breaks are stored as LF, the form a delimited
// table reads back.
func (r Record) Set(field, v string) bool {
	if _, ok := r.values[field]; !ok {
		return false
	}
	r.values[field] = strings.ReplaceAll(v, "\r\n", "\n")
	return true
}

func (r Record) Get(field string) string {
	return r.values[field]
}

func (r Record) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Values returns the field values in schema order.
func (r Record) Values() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = r.values[f]
	}
	return out
}

// MarshalJSON encodes the record as an object with keys in schema order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[f])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
