// Package parser defines the contract for turning a raw extract into a typed
// table, plus a helper that drives it from a datasource.
package parser

import (
	"context"
	"fmt"
	"io"

	"salesetl/internal/dataset"
	"salesetl/internal/datasource"
)

// Parser converts one extract into a typed table. region labels the extract
// and is injected when the extract carries no region column. The int result
// counts rows that were skipped as malformed.
type Parser interface {
	Parse(r io.Reader, region string) (*dataset.Table, int, error)
}

// Load opens src, parses it with p and closes it. Open and close errors are
// returned as-is; sources already classify them.
func Load(ctx context.Context, p Parser, src datasource.Source, region string) (tbl *dataset.Table, skipped int, err error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("parser: close %s: %w", src.Name(), cerr)
		}
	}()

	tbl, skipped, err = p.Parse(rc, region)
	if err != nil {
		return nil, skipped, fmt.Errorf("parser: %s: %w", src.Name(), err)
	}
	return tbl, skipped, nil
}
