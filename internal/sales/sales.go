// Package sales holds the sales-order domain model: column names, the
// cleansed schema every regional table must share, and the persisted
// sales_data table with its write mapping.
package sales

import (
	"salesetl/internal/dataset"
	"salesetl/internal/ddl"
	"salesetl/pkg/records"
)

// Column names as they appear in the extracts and in the store.
const (
	OrderID           = "OrderId"
	OrderItemID       = "OrderItemId"
	QuantityOrdered   = "QuantityOrdered"
	ItemPrice         = "ItemPrice"
	PromotionDiscount = "PromotionDiscount"
	Region            = "region"
	TotalSales        = "total_sales"

	// NetSales is the derived field inside the pipeline. The store column
	// is NetSaleColumn; ToRow maps one onto the other.
	NetSales      = "net_sales"
	NetSaleColumn = "net_sale"
)

// DefaultTable is the destination table name.
const DefaultTable = "sales_data"

// RequiredColumns must be present in every extract.
var RequiredColumns = []string{OrderID, OrderItemID, QuantityOrdered, ItemPrice, PromotionDiscount}

// IdentifierColumns hold opaque identifiers. They are text end to end and
// must not go through numeric inference.
var IdentifierColumns = []string{OrderID, OrderItemID}

// CleansedSchema is the schema of every table leaving the transform stage.
// Combining regional tables relies on it being identical across sources.
var CleansedSchema = dataset.Schema{
	{Name: OrderID, Type: dataset.String},
	{Name: OrderItemID, Type: dataset.String},
	{Name: QuantityOrdered, Type: dataset.Int},
	{Name: ItemPrice, Type: dataset.Float},
	{Name: PromotionDiscount, Type: dataset.Float},
	{Name: Region, Type: dataset.String},
	{Name: TotalSales, Type: dataset.Float},
	{Name: NetSales, Type: dataset.Float},
}

// PersistedTable describes the destination table. OrderId is the primary key.
func PersistedTable(fqn string) ddl.LogicalTable {
	if fqn == "" {
		fqn = DefaultTable
	}
	return ddl.LogicalTable{
		FQN: fqn,
		Columns: []ddl.LogicalColumn{
			{Name: OrderID, Type: string(dataset.String), PrimaryKey: true},
			{Name: OrderItemID, Type: string(dataset.String), Nullable: true},
			{Name: QuantityOrdered, Type: string(dataset.Int), Nullable: true},
			{Name: ItemPrice, Type: string(dataset.Float), Nullable: true},
			{Name: PromotionDiscount, Type: string(dataset.Float), Nullable: true},
			{Name: TotalSales, Type: string(dataset.Float), Nullable: true},
			{Name: Region, Type: string(dataset.String), Nullable: true},
			{Name: NetSaleColumn, Type: string(dataset.Float), Nullable: true},
		},
	}
}

// WriteColumns is the column order of rows produced by ToRow.
var WriteColumns = PersistedTable(DefaultTable).ColumnNames()

// writeSources names the record field feeding each WriteColumns entry.
var writeSources = func() []string {
	src := make([]string, len(WriteColumns))
	for i, c := range WriteColumns {
		if c == NetSaleColumn {
			src[i] = NetSales
			continue
		}
		src[i] = c
	}
	return src
}()

// ToRow renders a cleansed record as a row aligned with WriteColumns.
func ToRow(r records.Record) []any {
	row := make([]any, len(writeSources))
	for i, f := range writeSources {
		row[i] = r[f]
	}
	return row
}

// ToRows applies ToRow to every record.
func ToRows(recs []records.Record) [][]any {
	out := make([][]any, len(recs))
	for i, r := range recs {
		out[i] = ToRow(r)
	}
	return out
}
