package mssql

// Config holds MSSQL repository configuration.
type Config struct {
	DSN        string   // sqlserver:// URL or ADO-style connection string
	Table      string   // optionally schema-qualified target, e.g. "dbo.sales_data"
	Columns    []string // ordered columns for the bulk copy
	KeyColumns []string // primary key columns
}
