// Package csv loads a delimited regional extract into a typed dataset.Table.
//
// The first row is the header. Column types are inferred from the data: a
// column is int when every non-empty cell parses as an integer, float when
// every non-empty cell parses as a number, and string otherwise. Empty cells
// are NULL and do not take part in inference.
//
// Rows with the wrong number of fields or broken quoting are skipped and
// counted (soft-fail); a missing or unusable header fails the whole load.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"go.uber.org/zap"

	"salesetl/internal/dataset"
	"salesetl/internal/errs"
	"salesetl/pkg/records"
)

// RegionColumn is the column that carries the region label. When the
// extract has no such column, one is appended and filled with the label the
// caller passes to Parse.
const RegionColumn = "region"

// Options configures the parser. Zero values pick sensible defaults.
type Options struct {
	// Comma is the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing whitespace from each cell.
	TrimSpace bool

	// Encoding names the input character set (WHATWG label such as
	// "windows-1250" or "iso-8859-2"). Empty or "utf-8" reads bytes as-is.
	Encoding string

	// MaxLoggedSkips caps how many skipped rows are logged individually.
	// Zero means 20.
	MaxLoggedSkips int

	// TextColumns are never inferred: their cells keep the raw text, so
	// identifiers like "007" or ids wider than int64 survive unchanged.
	TextColumns []string
}

// Parser parses extracts according to Options. It is safe to reuse across
// inputs but is not safe for concurrent use of a single Parse call.
type Parser struct {
	opt Options
	log *zap.Logger
}

// NewParser constructs a Parser. A nil logger is replaced with a no-op one.
func NewParser(opt Options, log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	if opt.Comma == 0 {
		opt.Comma = ','
	}
	if opt.MaxLoggedSkips <= 0 {
		opt.MaxLoggedSkips = 20
	}
	return &Parser{opt: opt, log: log.Named("csv")}
}

// Parse reads one extract from r and returns the typed table together with
// the number of body rows that were skipped. region is injected into every
// row when the header has no region column.
//
// All failures that prevent producing a table wrap errs.ErrIngest.
func (p *Parser) Parse(r io.Reader, region string) (*dataset.Table, int, error) {
	r, err := decodeReader(r, p.opt.Encoding)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", errs.ErrIngest, err)
	}

	cr := csv.NewReader(r)
	cr.Comma = p.opt.Comma
	// Width is enforced below so that a short row is skipped, not fatal.
	cr.FieldsPerRecord = -1

	h, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, fmt.Errorf("%w: missing header row", errs.ErrIngest)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read csv header: %w", errs.ErrIngest, err)
	}
	headers, err := normalizeHeaders(h)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", errs.ErrIngest, err)
	}

	var (
		cells   [][]*string
		skipped int
	)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				// An I/O failure mid-stream is not a bad row.
				return nil, skipped, fmt.Errorf("%w: read csv: %w", errs.ErrIngest, err)
			}
			p.skip(&skipped, line, err.Error())
			continue
		}
		if len(row) != len(headers) {
			p.skip(&skipped, line, fmt.Sprintf("incorrect number of fields (expected %d, got %d)", len(headers), len(row)))
			continue
		}

		vals := make([]*string, len(row))
		for i, v := range row {
			if p.opt.TrimSpace {
				v = strings.TrimSpace(v)
			}
			if v == "" {
				continue
			}
			vals[i] = &v
		}
		cells = append(cells, vals)
	}

	types := inferTypes(len(headers), cells)
	for i, name := range headers {
		if slices.Contains(p.opt.TextColumns, name) {
			types[i] = dataset.String
		}
	}

	schema := make(dataset.Schema, len(headers))
	for i, name := range headers {
		schema[i] = dataset.Field{Name: name, Type: types[i]}
	}
	inject := !schema.Has(RegionColumn)
	if inject {
		schema = append(schema, dataset.Field{Name: RegionColumn, Type: dataset.String})
	}

	rows := make([]records.Record, len(cells))
	for n, vals := range cells {
		rec := make(records.Record, len(schema))
		for i, v := range vals {
			rec[headers[i]] = typedValue(v, types[i])
		}
		if inject {
			rec[RegionColumn] = emptyToNil(region)
		}
		rows[n] = rec
	}

	if skipped > p.opt.MaxLoggedSkips {
		p.log.Warn("skipped rows beyond log limit",
			zap.Int("skipped", skipped),
			zap.Int("logged", p.opt.MaxLoggedSkips))
	}
	p.log.Debug("parsed extract",
		zap.String("region", region),
		zap.Int("rows", len(rows)),
		zap.Int("skipped", skipped),
		zap.Stringer("schema", schema),
		zap.Bool("region_injected", inject))

	return &dataset.Table{Schema: schema, Rows: rows, Source: region}, skipped, nil
}

func (p *Parser) skip(skipped *int, line int, reason string) {
	if *skipped < p.opt.MaxLoggedSkips {
		p.log.Warn("skipping row", zap.Int("line", line), zap.String("reason", reason))
	}
	*skipped++
}

// emptyToNil converts an empty string to nil; all other values are returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
