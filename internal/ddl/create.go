// Package ddl defines a small, backend-agnostic model for SQL DDL and the
// Dialect type that renders it.
//
// The zero Dialect is the generic renderer: identifiers are emitted as-is and
// no idempotency clause is added. Backend packages (internal/storage/*/ddl)
// declare a Dialect with their quoting, type mapping and CREATE guard.
package ddl

import (
	"fmt"
	"strings"
)

// Dialect renders TableDefs for one SQL engine.
type Dialect struct {
	// Name prefixes error messages, e.g. "sqlite ddl".
	Name string

	// QuoteIdent quotes a single identifier. Nil leaves identifiers bare.
	QuoteIdent func(string) string

	// Create is the statement head. Empty means "CREATE TABLE".
	Create string

	// Guard wraps the finished CREATE statement, for engines without
	// IF NOT EXISTS. It receives the quoted table name.
	Guard func(quotedFQN, stmt string) string

	// MapType maps logical kinds ("string", "int", "float") to column types.
	MapType func(kind string) string

	// KeyType, when set, overrides MapType for primary key columns (engines
	// that cannot index unbounded text).
	KeyType func(kind string) string
}

// BuildCreateTableSQL renders a generic CREATE TABLE statement:
//
//	CREATE TABLE <FQN> (
//	  <Name> <SQLType> [NOT NULL] [DEFAULT <Default>],
//	  ...,
//	  [PRIMARY KEY (<pk-cols>)]
//	);
func BuildCreateTableSQL(t TableDef) (string, error) {
	return Dialect{Name: "ddl"}.BuildCreateTableSQL(t)
}

// Quote quotes id, or returns it unchanged when the dialect has no quoting.
func (d Dialect) Quote(id string) string {
	if d.QuoteIdent == nil {
		return id
	}
	return d.QuoteIdent(id)
}

// QuoteFQN quotes each dot-separated segment of fqn ("schema.table").
func (d Dialect) QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, d.Quote(p))
	}
	return strings.Join(out, ".")
}

// Resolve turns a logical table into this dialect's TableDef.
func (d Dialect) Resolve(t LogicalTable) TableDef {
	mapType := d.MapType
	if mapType == nil {
		mapType = func(k string) string { return k }
	}
	def := t.Resolve(mapType)
	if d.KeyType != nil {
		for i, c := range t.Columns {
			if c.PrimaryKey {
				def.Columns[i].SQLType = d.KeyType(c.Type)
			}
		}
	}
	return def
}

// CreateTable renders the CREATE statement for a logical table.
func (d Dialect) CreateTable(t LogicalTable) (string, error) {
	return d.BuildCreateTableSQL(d.Resolve(t))
}

// BuildCreateTableSQL renders t. FQN, names and types are trimmed; Default
// is emitted as raw SQL.
func (d Dialect) BuildCreateTableSQL(t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", d.Name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: at least one column is required", d.Name)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", d.Name, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("%s: column %s missing SQLType", d.Name, name)
		}

		var sb strings.Builder
		sb.WriteString(d.Quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, d.Quote(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	head := d.Create
	if head == "" {
		head = "CREATE TABLE"
	}
	quoted := d.QuoteFQN(fqn)
	stmt := fmt.Sprintf("%s %s (\n  %s\n);", head, quoted, strings.Join(cols, ",\n  "))
	if d.Guard != nil {
		stmt = d.Guard(quoted, stmt)
	}
	return stmt, nil
}
