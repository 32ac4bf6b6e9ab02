package mysql

// Config holds MySQL repository configuration.
type Config struct {
	DSN        string   // go-sql-driver DSN, e.g. "user:pass@tcp(localhost:3306)/sales"
	Table      string   // optionally database-qualified target
	Columns    []string // ordered insert columns
	KeyColumns []string // primary key columns
}
