package dataset

import (
	"fmt"
	"strings"

	"salesetl/internal/errs"
	"salesetl/pkg/records"
)

// Union concatenates the rows of tables in argument order. Every table must
// share the first table's schema exactly (names, types, order).
//
// Rows are not deduplicated across inputs: the same key arriving from two
// sources is passed on as two rows.
func Union(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("union: %w: no input tables", errs.ErrSchemaMismatch)
	}
	for i, t := range tables {
		if t == nil {
			return nil, fmt.Errorf("union: %w: input %d is nil", errs.ErrSchemaMismatch, i)
		}
	}

	base := tables[0].Schema
	total := 0
	sources := make([]string, 0, len(tables))
	for i, t := range tables {
		if d := base.Diff(t.Schema); d != "" {
			return nil, fmt.Errorf("union: %w: input %d (%s) vs input 0 (%s): %s",
				errs.ErrSchemaMismatch, i, t.Source, tables[0].Source, d)
		}
		total += len(t.Rows)
		if t.Source != "" {
			sources = append(sources, t.Source)
		}
	}

	rows := make([]records.Record, 0, total)
	for _, t := range tables {
		rows = append(rows, t.Rows...)
	}

	schema := make(Schema, len(base))
	copy(schema, base)
	return &Table{Schema: schema, Rows: rows, Source: strings.Join(sources, "+")}, nil
}
