// Package builtin contains the record transformers the cleansing stage is
// built from.
package builtin

import "salesetl/pkg/records"

// Require removes any record missing a value for one of Fields. OnDrop sees
// each dropped record and the first missing field.
type Require struct {
	Fields []string
	OnDrop func(rec records.Record, field string)
}

// Apply returns a filtered slice containing only records that have all
// required fields present and non-empty.
func (r Require) Apply(in []records.Record) []records.Record {
	out := in[:0]
	for _, rec := range in {
		missing := ""
		for _, f := range r.Fields {
			if rec.IsNull(f) {
				missing = f
				break
			}
		}
		if missing == "" {
			out = append(out, rec)
		} else if r.OnDrop != nil {
			r.OnDrop(rec, missing)
		}
	}
	return out
}
