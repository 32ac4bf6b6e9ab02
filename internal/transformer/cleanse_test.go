package transformer

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesetl/internal/dataset"
	"salesetl/internal/errs"
	pcsv "salesetl/internal/parser/csv"
	"salesetl/internal/sales"
	"salesetl/pkg/records"
)

// rawTable mimics a parsed extract: identifiers kept as text, a region
// column injected by the parser.
func rawTable(rows ...records.Record) *dataset.Table {
	return &dataset.Table{
		Schema: dataset.Schema{
			{Name: sales.OrderID, Type: dataset.String},
			{Name: sales.OrderItemID, Type: dataset.String},
			{Name: sales.QuantityOrdered, Type: dataset.Int},
			{Name: sales.ItemPrice, Type: dataset.Float},
			{Name: sales.PromotionDiscount, Type: dataset.Float},
			{Name: sales.Region, Type: dataset.String},
		},
		Rows:   rows,
		Source: "A",
	}
}

func order(id int64, qty, price, disc any, region any) records.Record {
	return records.Record{
		sales.OrderID:           strconv.FormatInt(id, 10),
		sales.OrderItemID:       strconv.FormatInt(id*10, 10),
		sales.QuantityOrdered:   qty,
		sales.ItemPrice:         price,
		sales.PromotionDiscount: disc,
		sales.Region:            region,
	}
}

func byID(tbl *dataset.Table) map[string]records.Record {
	out := map[string]records.Record{}
	for _, r := range tbl.Rows {
		out[r[sales.OrderID].(string)] = r
	}
	return out
}

func TestCleanseScenarios(t *testing.T) {
	t.Parallel()

	in := rawTable(
		order(1, int64(3), 10.0, 5.0, "A"), // 30 / 25 kept
		order(2, int64(1), 2.0, 10.0, "A"), // -8 excluded
		order(3, int64(2), 4.5, nil, "A"),  // null discount counts as 0
		order(4, int64(1), 1.0, 1.0, "A"),  // net 0 excluded
		order(5, nil, 3.0, nil, "A"),       // null quantity: net null, excluded
		order(1, int64(9), 9.0, 0.0, "A"),  // duplicate of 1, dropped
		order(6, int64(1), 5.0, 0.0, nil),  // null region filled
	)

	out, st, err := Cleanse(in, "A", Options{})
	require.NoError(t, err)

	assert.True(t, sales.CleansedSchema.Equal(out.Schema), out.Schema.Diff(sales.CleansedSchema))
	assert.Equal(t, Stats{Input: 7, Filtered: 3, Duplicates: 1, Output: 3}, st)

	got := byID(out)
	require.Len(t, got, 3)

	r1 := got["1"]
	assert.Equal(t, 30.0, r1[sales.TotalSales])
	assert.Equal(t, 25.0, r1[sales.NetSales])
	assert.Equal(t, int64(3), r1[sales.QuantityOrdered], "first occurrence survives")
	assert.Equal(t, "10", r1[sales.OrderItemID])

	assert.NotContains(t, got, "2")
	assert.Equal(t, 9.0, got["3"][sales.NetSales])
	assert.Equal(t, DefaultRegionFallback, got["6"][sales.Region])

	// Source order is kept.
	var ids []string
	for _, r := range out.Rows {
		ids = append(ids, r[sales.OrderID].(string))
	}
	assert.Equal(t, []string{"1", "3", "6"}, ids)
}

func TestCleanseInvariants(t *testing.T) {
	t.Parallel()

	var rows []records.Record
	for i := int64(0); i < 200; i++ {
		rows = append(rows, order(i%150, i%5, float64(i%7)+0.25, float64(i%11), "A"))
	}
	out, _, err := Cleanse(rawTable(rows...), "A", Options{})
	require.NoError(t, err)

	seen := map[any]bool{}
	for _, r := range out.Rows {
		q := r[sales.QuantityOrdered].(int64)
		p := r[sales.ItemPrice].(float64)
		total := r[sales.TotalSales].(float64)
		assert.InDelta(t, float64(q)*p, total, 1e-9)
		assert.Greater(t, r[sales.NetSales].(float64), 0.0)
		assert.False(t, seen[r[sales.OrderID]], "duplicate OrderId %v", r[sales.OrderID])
		seen[r[sales.OrderID]] = true
		assert.NotNil(t, r[sales.Region])
	}
}

func TestCleanseDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := rawTable(order(1, int64(3), 10.0, 5.0, nil))
	_, _, err := Cleanse(in, "A", Options{RegionFallback: "ZZ"})
	require.NoError(t, err)
	assert.Equal(t, "1", in.Rows[0][sales.OrderID])
	assert.Nil(t, in.Rows[0][sales.Region])
	assert.NotContains(t, in.Rows[0], sales.TotalSales)
}

func TestCleanseDropsExtraColumns(t *testing.T) {
	t.Parallel()

	in := rawTable(order(1, int64(3), 10.0, 5.0, "A"))
	in.Schema = in.Schema.With("batch_id", dataset.Int)
	in.Rows[0]["batch_id"] = int64(7)

	out, _, err := Cleanse(in, "A", Options{})
	require.NoError(t, err)
	assert.NotContains(t, out.Rows[0], "batch_id")
}

func TestCleanseNullPropagatesBadCells(t *testing.T) {
	t.Parallel()

	in := rawTable(
		order(1, "three", 10.0, 0.0, "A"),
		order(2, "2", 10.0, "n/a", "A"),
	)
	out, st, err := Cleanse(in, "A", Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, st.NulledCells)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, 20.0, out.Rows[0][sales.NetSales])
}

func TestCleanseMissingKeyDropped(t *testing.T) {
	t.Parallel()

	r := order(1, int64(1), 5.0, 0.0, "A")
	r[sales.OrderID] = nil
	_, st, err := Cleanse(rawTable(r), "A", Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, st.MissingKey)
	assert.Equal(t, 0, st.Output)
}

func TestCleanseErrors(t *testing.T) {
	t.Parallel()

	missing := rawTable(order(1, int64(1), 1.0, 0.0, "A"))
	missing.Schema = missing.Schema[:3]

	allBad := rawTable(
		order(1, int64(1), "free", 0.0, "A"),
		order(2, int64(1), "gratis", 0.0, "A"),
	)

	cases := []struct {
		name string
		tbl  *dataset.Table
	}{
		{"nil_table", nil},
		{"missing_column", missing},
		{"price_column_not_numeric", allBad},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := Cleanse(c.tbl, "A", Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrTransform)
		})
	}
}

func TestCleanseAllNullDiscountIsFine(t *testing.T) {
	t.Parallel()

	out, _, err := Cleanse(rawTable(order(1, int64(2), 2.5, nil, "A")), "A", Options{})
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	assert.False(t, math.IsNaN(out.Rows[0][sales.NetSales].(float64)))
	assert.Equal(t, 5.0, out.Rows[0][sales.NetSales])
}

func TestCleanseKeepsIdentifierText(t *testing.T) {
	t.Parallel()

	const extract = `OrderId,OrderItemId,QuantityOrdered,ItemPrice,PromotionDiscount
007,0001,1,2.0,0
7,1,1,2.0,0
12345678901234567890,98765432109876543210,1,2.0,0
12345678901234567891,98765432109876543211,1,2.0,0
`
	p := pcsv.NewParser(pcsv.Options{TrimSpace: true, TextColumns: sales.IdentifierColumns}, nil)
	raw, _, err := p.Parse(strings.NewReader(extract), "A")
	require.NoError(t, err)
	idx := raw.Schema.Index(sales.OrderID)
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, dataset.String, raw.Schema[idx].Type)

	out, st, err := Cleanse(raw, "A", Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, st.Duplicates)
	require.Equal(t, 4, st.Output, "distinct ids must all survive")

	var ids, items []string
	for _, r := range out.Rows {
		ids = append(ids, r[sales.OrderID].(string))
		items = append(items, r[sales.OrderItemID].(string))
	}
	assert.Equal(t, []string{"007", "7", "12345678901234567890", "12345678901234567891"}, ids)
	assert.Equal(t, []string{"0001", "1", "98765432109876543210", "98765432109876543211"}, items)
}
