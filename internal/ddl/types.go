package ddl

// ColumnDef describes a single column in a table definition produced or
// consumed by ddl. It intentionally uses simple, database-agnostic fields.
//
// Fields:
//   - Name: logical column name (unquoted; quoting/escaping happens at render time)
//   - SQLType: target SQL type (e.g., TEXT, BIGINT, TIMESTAMPTZ)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key (not used by all generators)
//   - Default: raw default expression (e.g., 'anon', CURRENT_TIMESTAMP)
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the fully-qualified table name (FQN) and an ordered list of
// columns. The FQN is expected in dotted form (e.g., "schema.table") and will
// be quoted/escaped by renderers as needed.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// LogicalColumn is a column whose Type is a logical kind ("string", "int",
// "float") rather than a dialect type. Dialects turn it into a ColumnDef via
// their MapType.
type LogicalColumn struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool
}

// LogicalTable is a dialect-neutral table definition.
type LogicalTable struct {
	FQN     string
	Columns []LogicalColumn
}

// Resolve maps every logical type through mapType. Primary key columns are
// forced NOT NULL.
func (t LogicalTable) Resolve(mapType func(string) string) TableDef {
	cols := make([]ColumnDef, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = ColumnDef{
			Name:       c.Name,
			SQLType:    mapType(c.Type),
			Nullable:   c.Nullable && !c.PrimaryKey,
			PrimaryKey: c.PrimaryKey,
		}
	}
	return TableDef{FQN: t.FQN, Columns: cols}
}

// ColumnNames returns the column names in declaration order.
func (t LogicalTable) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}
