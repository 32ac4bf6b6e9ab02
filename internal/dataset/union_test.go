package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesetl/internal/errs"
	"salesetl/pkg/records"
)

var orderSchema = Schema{
	{Name: "OrderId", Type: String},
	{Name: "total_sales", Type: Float},
	{Name: "region", Type: String},
}

func TestUnionConcatenatesInOrder(t *testing.T) {
	t.Parallel()

	a := &Table{Schema: orderSchema, Source: "A", Rows: []records.Record{
		{"OrderId": "1", "total_sales": 10.0, "region": "A"},
		{"OrderId": "2", "total_sales": 20.0, "region": "A"},
	}}
	b := &Table{Schema: orderSchema, Source: "B", Rows: []records.Record{
		{"OrderId": "3", "total_sales": 30.0, "region": "B"},
	}}

	got, err := Union(a, b)
	require.NoError(t, err)
	require.Equal(t, 3, got.Len())
	assert.Equal(t, "A+B", got.Source)
	assert.True(t, got.Schema.Equal(orderSchema))

	ids, ok := got.Column("OrderId")
	require.True(t, ok)
	assert.Equal(t, []any{"1", "2", "3"}, ids)
}

func TestUnionKeepsCrossSourceDuplicates(t *testing.T) {
	t.Parallel()

	a := &Table{Schema: orderSchema, Rows: []records.Record{{"OrderId": "dup", "total_sales": 1.0, "region": "A"}}}
	b := &Table{Schema: orderSchema, Rows: []records.Record{{"OrderId": "dup", "total_sales": 2.0, "region": "B"}}}

	got, err := Union(a, b)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
}

func TestUnionSchemaMismatch(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		other Schema
	}{
		{"type_differs", orderSchema.With("total_sales", Int)},
		{"extra_column", orderSchema.With("net_sales", Float)},
		{"order_differs", Schema{orderSchema[1], orderSchema[0], orderSchema[2]}},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			_, err := Union(&Table{Schema: orderSchema}, &Table{Schema: c.other})
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrSchemaMismatch), "got %v", err)
		})
	}
}

func TestUnionNoInputs(t *testing.T) {
	t.Parallel()

	_, err := Union()
	require.ErrorIs(t, err, errs.ErrSchemaMismatch)
}

func TestUnionNilInput(t *testing.T) {
	t.Parallel()

	_, err := Union(&Table{Schema: orderSchema}, nil)
	require.ErrorIs(t, err, errs.ErrSchemaMismatch)
	assert.Equal(t, "schema_mismatch", errs.Kind(err))
}

func TestSchemaWithDoesNotMutate(t *testing.T) {
	t.Parallel()

	s2 := orderSchema.With("region", Int)
	assert.Equal(t, String, orderSchema[2].Type)
	assert.Equal(t, Int, s2[2].Type)
	assert.Equal(t, -1, orderSchema.Index("nope"))
}
