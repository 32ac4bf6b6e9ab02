package builtin

import "salesetl/pkg/records"

// FillNull replaces a null or empty Field with Value.
type FillNull struct {
	Field string
	Value any
}

func (f FillNull) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		if r.IsNull(f.Field) {
			r[f.Field] = f.Value
		}
	}
	return in
}
