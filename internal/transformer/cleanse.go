package transformer

import (
	"fmt"

	"go.uber.org/zap"

	"salesetl/internal/dataset"
	"salesetl/internal/errs"
	"salesetl/internal/sales"
	"salesetl/internal/transformer/builtin"
	"salesetl/pkg/records"
)

// DefaultRegionFallback labels rows whose region is null.
const DefaultRegionFallback = "UNKNOWN"

// Options configures Cleanse. Zero values select the defaults.
type Options struct {
	// RegionFallback replaces a null region. Default DefaultRegionFallback.
	RegionFallback string
	// DedupPolicy picks the surviving row per OrderId. Default "keep-first".
	DedupPolicy string
	Log         *zap.Logger
}

// Stats counts what each cleansing step did to one extract.
type Stats struct {
	Input       int `json:"input"`
	NulledCells int `json:"nulled_cells"`
	Filtered    int `json:"filtered"`
	MissingKey  int `json:"missing_key"`
	Duplicates  int `json:"duplicates"`
	Output      int `json:"output"`
}

// coerceTypes maps each input column onto its cleansed type.
var coerceTypes = map[string]string{
	sales.OrderID:           "string",
	sales.OrderItemID:       "string",
	sales.QuantityOrdered:   "int",
	sales.ItemPrice:         "float",
	sales.PromotionDiscount: "float",
	sales.Region:            "string",
}

// requiredInput must exist in every parsed extract.
var requiredInput = append(append([]string{}, sales.RequiredColumns...), sales.Region)

// numericColumns fail the whole extract when no value in them coerces.
var numericColumns = []string{sales.QuantityOrdered, sales.ItemPrice, sales.PromotionDiscount}

// Cleanse turns one parsed extract into CleansedOrderRecord rows. The steps
// run in this order, each relying on the previous ones:
//
//  1. cast region and the identifier columns to string, quantity to int,
//     price and discount to float (a bad cell becomes null)
//  2. total_sales = QuantityOrdered × ItemPrice
//  3. net_sales = total_sales − coalesce(PromotionDiscount, 0)
//  4. null region → RegionFallback
//  5. keep rows with net_sales > 0
//  6. drop rows without OrderId, then keep one row per OrderId
//
// The input table is not modified. The result has sales.CleansedSchema.
// ErrTransform is returned when a required column is absent or when every
// non-null value of a numeric column fails to coerce.
func Cleanse(tbl *dataset.Table, region string, opt Options) (*dataset.Table, Stats, error) {
	var st Stats
	if tbl == nil {
		return nil, st, fmt.Errorf("%w: %s: nil table", errs.ErrTransform, region)
	}
	if opt.RegionFallback == "" {
		opt.RegionFallback = DefaultRegionFallback
	}
	if opt.DedupPolicy == "" {
		opt.DedupPolicy = "keep-first"
	}
	log := opt.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("transform").With(zap.String("region", region))

	for _, c := range requiredInput {
		if !tbl.Schema.Has(c) {
			return nil, st, fmt.Errorf("%w: %s: missing column %q (have %v)", errs.ErrTransform, region, c, tbl.Schema.Names())
		}
	}

	st.Input = tbl.Len()
	rows := make([]records.Record, len(tbl.Rows))
	nonNull := make(map[string]int, len(numericColumns))
	for i, r := range tbl.Rows {
		rec := make(records.Record, len(sales.CleansedSchema))
		for c := range coerceTypes {
			rec[c] = r[c]
		}
		for _, c := range numericColumns {
			if !rec.IsNull(c) {
				nonNull[c]++
			}
		}
		rows[i] = rec
	}

	failed := map[string]int{}
	rows = Chain{
		builtin.Normalize{Fields: []string{sales.OrderID, sales.OrderItemID, sales.Region}},
		builtin.Coerce{
			Types:  coerceTypes,
			OnFail: func(field string, _ any) { failed[field]++ },
		},
	}.Apply(rows)

	for _, c := range numericColumns {
		if n := nonNull[c]; n > 0 && failed[c] == n {
			return nil, st, fmt.Errorf("%w: %s: column %q: none of %d values coerce to %s",
				errs.ErrTransform, region, c, n, coerceTypes[c])
		}
	}
	for _, n := range failed {
		st.NulledCells += n
	}

	rows = Chain{
		builtin.Derive{
			Quantity: sales.QuantityOrdered,
			Price:    sales.ItemPrice,
			Discount: sales.PromotionDiscount,
			Total:    sales.TotalSales,
			Net:      sales.NetSales,
		},
		builtin.FillNull{Field: sales.Region, Value: opt.RegionFallback},
		builtin.Positive{
			Field:  sales.NetSales,
			OnDrop: func(records.Record) { st.Filtered++ },
		},
		builtin.Require{
			Fields: []string{sales.OrderID},
			OnDrop: func(records.Record, string) { st.MissingKey++ },
		},
		builtin.DeDup{
			Keys:   []string{sales.OrderID},
			Policy: opt.DedupPolicy,
			OnDrop: func(records.Record) { st.Duplicates++ },
		},
	}.Apply(rows)
	st.Output = len(rows)

	if st.NulledCells > 0 {
		log.Warn("non-coercible cells set to null", zap.Int("cells", st.NulledCells), zap.Any("by_column", failed))
	}
	log.Info("cleansed extract",
		zap.Int("input", st.Input),
		zap.Int("filtered", st.Filtered),
		zap.Int("missing_key", st.MissingKey),
		zap.Int("duplicates", st.Duplicates),
		zap.Int("output", st.Output))

	source := tbl.Source
	if source == "" {
		source = region
	}
	schema := make(dataset.Schema, len(sales.CleansedSchema))
	copy(schema, sales.CleansedSchema)
	return &dataset.Table{Schema: schema, Rows: rows, Source: source}, st, nil
}
