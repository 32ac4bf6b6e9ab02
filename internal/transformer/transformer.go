// Package transformer applies record-level transforms and hosts the cleansing
// stage that turns one parsed extract into CleansedOrderRecord rows.
package transformer

import "salesetl/pkg/records"

// Transformer rewrites a batch of records. Implementations may mutate and
// reslice the input; callers must not reuse it afterwards.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Chain is an ordered list of transformers.
type Chain []Transformer

func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}
