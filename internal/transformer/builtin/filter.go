package builtin

import "salesetl/pkg/records"

// Positive keeps records whose Field is a number strictly greater than zero.
// Null and non-numeric values fail the predicate. OnDrop sees each dropped
// record.
type Positive struct {
	Field  string
	OnDrop func(records.Record)
}

func (p Positive) Apply(in []records.Record) []records.Record {
	out := in[:0]
	for _, r := range in {
		var keep bool
		switch v := r[p.Field].(type) {
		case float64:
			keep = v > 0
		case int64:
			keep = v > 0
		case int:
			keep = v > 0
		}
		if keep {
			out = append(out, r)
		} else if p.OnDrop != nil {
			p.OnDrop(r)
		}
	}
	return out
}
