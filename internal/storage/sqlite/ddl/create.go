// Package ddl renders SQLite DDL from the generic ddl model.
//
// Identifiers are double-quoted ("main"."sales_data") and tables are created
// with CREATE TABLE IF NOT EXISTS, so applying the statement twice is a no-op.
package ddl

import (
	"strings"

	gddl "salesetl/internal/ddl"
)

// Dialect is the SQLite renderer.
var Dialect = gddl.Dialect{
	Name:       "sqlite ddl",
	QuoteIdent: quoteIdent,
	Create:     "CREATE TABLE IF NOT EXISTS",
	MapType:    MapType,
}

// BuildCreateTableSQL returns a SQLite CREATE TABLE IF NOT EXISTS statement.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return Dialect.BuildCreateTableSQL(t)
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
