package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite file path or URI, e.g. "sales_data.db" or
	// "file:sales.db?_pragma=busy_timeout(5000)".
	DSN string

	// Table is the destination table. A "main." prefix is accepted.
	Table string

	// Columns is the ordered list of destination columns.
	Columns []string

	// KeyColumns is carried for parity with the other backends.
	KeyColumns []string
}
