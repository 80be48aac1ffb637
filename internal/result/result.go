// Package result renders executor outcomes into the JSON shapes the
// library API contract (spec §6.2) promises callers.
package result

import (
	"bytes"
	"encoding/json"
)

// Row is one selected row as an ordered list of column/value pairs. A
// plain map[string]any would re-sort keys alphabetically on marshal,
// losing the projection's column order (e.g. "select name, id ..."); Row's
// MarshalJSON writes them back out in Cols order instead.
type Row struct {
	Cols []string
	Vals []any
}

// Get returns the value of column name and whether it was present.
func (r Row) Get(name string) (any, bool) {
	for i, c := range r.Cols {
		if c == name {
			return r.Vals[i], true
		}
	}
	return nil, false
}

// MarshalJSON renders r as a JSON object with keys in Cols order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.Cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.Vals[i])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// OK builds the {"ok":true,"message":"Executed."} shape used for
// CREATE TABLE and USE.
func OK(message string) []byte {
	b, _ := json.Marshal(struct {
		OK      bool   `json:"ok"`
		Message string `json:"message"`
	}{true, message})
	return b
}

// Mutation builds the {"ok":true} / {"ok":false,"error":"..."} shape used
// for INSERT and DELETE.
func Mutation(ok bool, errMsg string) []byte {
	if ok {
		b, _ := json.Marshal(struct {
			OK bool `json:"ok"`
		}{true})
		return b
	}
	b, _ := json.Marshal(struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}{false, errMsg})
	return b
}

// Rows builds the {"ok":true,"rows":[{col:value,...},...]} shape used for
// SELECT, columns in projection order. json.Marshal already escapes
// control characters in strings, as \u00XX or a short form such as \n or
// \t, per the standard library's encoder.
func Rows(rows []Row) []byte {
	if rows == nil {
		rows = []Row{}
	}
	b, _ := json.Marshal(struct {
		OK   bool  `json:"ok"`
		Rows []Row `json:"rows"`
	}{true, rows})
	return b
}

// Error builds a bare {"ok":false,"error":"..."} shape for statement-level
// errors that are not the insert/delete duplicate-key case.
func Error(errMsg string) []byte {
	b, _ := json.Marshal(struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}{false, errMsg})
	return b
}
