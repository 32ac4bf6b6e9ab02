// Package ddl renders MySQL DDL from the generic ddl model: backtick quoted
// identifiers, CREATE TABLE IF NOT EXISTS, and VARCHAR keys because MySQL
// cannot index TEXT without a prefix length.
package ddl

import (
	"context"
	"strings"

	gddl "salesetl/internal/ddl"
	"salesetl/internal/storage"
)

// Dialect is the MySQL renderer.
var Dialect = gddl.Dialect{
	Name:       "mysql ddl",
	QuoteIdent: quoteIdent,
	Create:     "CREATE TABLE IF NOT EXISTS",
	MapType:    MapType,
	KeyType:    KeyType,
}

// BuildCreateTableSQL returns a MySQL CREATE TABLE IF NOT EXISTS statement.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return Dialect.BuildCreateTableSQL(t)
}

// EnsureTable creates the table if it does not exist.
func EnsureTable(ctx context.Context, repo storage.Repository, def gddl.LogicalTable) error {
	sql, err := Dialect.CreateTable(def)
	if err != nil {
		return err
	}
	return repo.Exec(ctx, sql)
}

func quoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}
