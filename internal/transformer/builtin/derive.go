package builtin

import "salesetl/pkg/records"

// Derive computes line totals:
//
//	Total = Quantity × Price
//	Net   = Total − coalesce(Discount, 0)
//
// Inputs are expected to be coerced already (Quantity int64, Price and
// Discount float64). A null quantity or price makes both outputs null.
type Derive struct {
	Quantity string
	Price    string
	Discount string
	Total    string
	Net      string
}

func (d Derive) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		q, okQ := r[d.Quantity].(int64)
		p, okP := r[d.Price].(float64)
		if !okQ || !okP {
			r[d.Total] = nil
			r[d.Net] = nil
			continue
		}
		total := float64(q) * p
		disc, _ := r[d.Discount].(float64)
		r[d.Total] = total
		r[d.Net] = total - disc
	}
	return in
}
