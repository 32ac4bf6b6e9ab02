package postgres

// Config holds Postgres repository configuration.
type Config struct {
	DSN        string   // connection string for pgxpool
	Table      string   // optionally schema-qualified target, e.g. "public.sales_data"
	Columns    []string // ordered columns for COPY
	KeyColumns []string // primary key columns
}
