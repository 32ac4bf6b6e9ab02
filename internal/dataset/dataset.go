// Package dataset holds the in-memory typed table that flows between the
// pipeline stages. A Table is an ordered schema plus a slice of records keyed
// by the schema's field names.
package dataset

import (
	"fmt"
	"strings"

	"salesetl/pkg/records"
)

// Type is a logical column type.
type Type string

const (
	String Type = "string"
	Int    Type = "int"
	Float  Type = "float"
)

// Field is a named, typed column.
type Field struct {
	Name string
	Type Type
}

// Schema is an ordered list of fields.
type Schema []Field

// Index returns the position of name in s, or -1.
func (s Schema) Index(name string) int {
	for i, f := range s {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Has reports whether s contains a field called name.
func (s Schema) Has(name string) bool { return s.Index(name) >= 0 }

// Names returns the field names in order.
func (s Schema) Names() []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = f.Name
	}
	return out
}

// With returns a copy of s where field name has type t. If name is absent
// it is appended.
func (s Schema) With(name string, t Type) Schema {
	out := make(Schema, len(s), len(s)+1)
	copy(out, s)
	if i := out.Index(name); i >= 0 {
		out[i].Type = t
		return out
	}
	return append(out, Field{Name: name, Type: t})
}

// Diff returns a description of the first divergence between s and o, or ""
// when both have the same names, types, and order.
func (s Schema) Diff(o Schema) string {
	if len(s) != len(o) {
		return fmt.Sprintf("column count %d != %d", len(s), len(o))
	}
	for i := range s {
		if s[i].Name != o[i].Name {
			return fmt.Sprintf("column %d name %q != %q", i, s[i].Name, o[i].Name)
		}
		if s[i].Type != o[i].Type {
			return fmt.Sprintf("column %q type %s != %s", s[i].Name, s[i].Type, o[i].Type)
		}
	}
	return ""
}

// Equal reports whether s and o match field for field.
func (s Schema) Equal(o Schema) bool { return s.Diff(o) == "" }

func (s Schema) String() string {
	parts := make([]string, len(s))
	for i, f := range s {
		parts[i] = f.Name + ":" + string(f.Type)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Table is a typed, row-oriented dataset. Source names where the rows came
// from (a path or a region label) and is used only for diagnostics.
type Table struct {
	Schema Schema
	Rows   []records.Record
	Source string
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Column returns the values of column name in row order. ok is false when
// the schema has no such column.
func (t *Table) Column(name string) (vals []any, ok bool) {
	if !t.Schema.Has(name) {
		return nil, false
	}
	vals = make([]any, len(t.Rows))
	for i, r := range t.Rows {
		vals[i] = r[name]
	}
	return vals, true
}
