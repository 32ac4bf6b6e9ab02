package ddl

import (
	"context"
	"strings"
	"testing"

	gddl "salesetl/internal/ddl"
	"salesetl/internal/storage"
)

type fakeRepository struct {
	storage.Repository
	lastSQL string
}

func (f *fakeRepository) Exec(_ context.Context, sql string) error {
	f.lastSQL = sql
	return nil
}

func TestCreateTable(t *testing.T) {
	t.Parallel()

	def := gddl.LogicalTable{
		FQN: "public.sales_data",
		Columns: []gddl.LogicalColumn{
			{Name: "OrderId", Type: "string", PrimaryKey: true},
			{Name: "QuantityOrdered", Type: "int", Nullable: true},
			{Name: "ItemPrice", Type: "float", Nullable: true},
		},
	}
	got, err := Dialect.CreateTable(def)
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	want := `CREATE TABLE IF NOT EXISTS "public"."sales_data" (
  "OrderId" TEXT NOT NULL,
  "QuantityOrdered" BIGINT,
  "ItemPrice" DOUBLE PRECISION,
  PRIMARY KEY ("OrderId")
);`
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}

	var repo fakeRepository
	if err := EnsureTable(context.Background(), &repo, def); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	if repo.lastSQL != want {
		t.Fatalf("Exec got:\n%s", repo.lastSQL)
	}
}

func TestMapType(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"int":     "BIGINT",
		"Integer": "BIGINT",
		"float":   "DOUBLE PRECISION",
		"numeric": "NUMERIC",
		"bool":    "BOOLEAN",
		"string":  "TEXT",
	}
	for in, want := range tests {
		if got := MapType(in); got != want {
			t.Errorf("MapType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildCreateTableSQLErrorsArePrefixed(t *testing.T) {
	t.Parallel()

	_, err := BuildCreateTableSQL(gddl.TableDef{})
	if err == nil || !strings.HasPrefix(err.Error(), "postgres ddl:") {
		t.Fatalf("err = %v", err)
	}
}
