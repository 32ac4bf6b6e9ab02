package ddl

import (
	"testing"

	gddl "salesetl/internal/ddl"
)

func TestCreateTableIsGuarded(t *testing.T) {
	t.Parallel()

	def := gddl.LogicalTable{
		FQN: "dbo.sales_data",
		Columns: []gddl.LogicalColumn{
			{Name: "OrderId", Type: "string", PrimaryKey: true},
			{Name: "region", Type: "string", Nullable: true},
			{Name: "total_sales", Type: "float", Nullable: true},
		},
	}
	got, err := Dialect.CreateTable(def)
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	want := `IF OBJECT_ID(N'[dbo].[sales_data]', N'U') IS NULL
BEGIN
CREATE TABLE [dbo].[sales_data] (
  [OrderId] NVARCHAR(450) NOT NULL,
  [region] NVARCHAR(MAX),
  [total_sales] FLOAT,
  PRIMARY KEY ([OrderId])
);
END;`
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestQuoting(t *testing.T) {
	t.Parallel()

	if got := quoteIdent("a]b"); got != "[a]]b]" {
		t.Fatalf("quoteIdent = %s", got)
	}
	if got := Dialect.QuoteFQN("dbo. t "); got != "[dbo].[t]" {
		t.Fatalf("QuoteFQN = %s", got)
	}
}

func TestKeyType(t *testing.T) {
	t.Parallel()

	if KeyType("string") != "NVARCHAR(450)" || KeyType("int") != "BIGINT" {
		t.Fatalf("KeyType: %s %s", KeyType("string"), KeyType("int"))
	}
	if MapType("bool") != "BIT" || MapType("decimal") != "DECIMAL(38, 10)" {
		t.Fatal("MapType mismatch")
	}
}
