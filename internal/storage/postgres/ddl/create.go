// Package ddl renders Postgres DDL from the generic ddl model.
package ddl

import (
	"strings"

	gddl "salesetl/internal/ddl"
)

// Dialect is the Postgres renderer: double-quoted identifiers, schema
// qualified names ("public"."sales_data"), CREATE TABLE IF NOT EXISTS.
var Dialect = gddl.Dialect{
	Name:       "postgres ddl",
	QuoteIdent: quoteIdent,
	Create:     "CREATE TABLE IF NOT EXISTS",
	MapType:    MapType,
}

// BuildCreateTableSQL returns a Postgres CREATE TABLE IF NOT EXISTS statement.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return Dialect.BuildCreateTableSQL(t)
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
