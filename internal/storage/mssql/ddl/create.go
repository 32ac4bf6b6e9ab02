// Package ddl renders SQL Server DDL from the generic ddl model.
//
// SQL Server has no CREATE TABLE IF NOT EXISTS, so the statement is guarded:
//
//	IF OBJECT_ID(N'[dbo].[sales_data]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [dbo].[sales_data] (...);
//	END;
package ddl

import (
	"strings"

	gddl "salesetl/internal/ddl"
)

// Dialect is the SQL Server renderer.
var Dialect = gddl.Dialect{
	Name:       "mssql ddl",
	QuoteIdent: quoteIdent,
	Guard:      guard,
	MapType:    MapType,
	KeyType:    KeyType,
}

// BuildCreateTableSQL returns a guarded SQL Server CREATE TABLE script.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return Dialect.BuildCreateTableSQL(t)
}

func guard(quotedFQN, stmt string) string {
	lit := strings.ReplaceAll(quotedFQN, "'", "''")
	return "IF OBJECT_ID(N'" + lit + "', N'U') IS NULL\nBEGIN\n" + stmt + "\nEND;"
}

func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}
