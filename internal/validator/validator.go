// Package validator runs read-only aggregate checks against the loaded
// sales table and assembles them into a Report.
package validator

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"salesetl/internal/sales"
	"salesetl/internal/storage"
)

// RegionTotal is one row of the per-region breakdown.
type RegionTotal struct {
	Region *string  `db:"region" json:"region"`
	Total  *float64 `db:"total" json:"total"`
}

// Duplicate is an OrderId stored more than once. With the primary key in
// place the list is empty; entries mean the constraint was bypassed.
type Duplicate struct {
	OrderID string `db:"order_id" json:"order_id"`
	Count   int64  `db:"n" json:"count"`
}

// Report is the composite result of the four validation queries.
type Report struct {
	TotalRecords int64 `json:"total_records"`

	// SalesByRegion is in the order the engine returned the groups.
	SalesByRegion []RegionTotal `json:"sales_by_region"`

	// AverageSales is nil when the table is empty.
	AverageSales *float64 `json:"average_sales"`

	Duplicates []Duplicate `json:"duplicates"`
}

// RegionSum adds up the per-region totals.
func (r *Report) RegionSum() float64 {
	var sum float64
	for _, rt := range r.SalesByRegion {
		if rt.Total != nil {
			sum += *rt.Total
		}
	}
	return sum
}

// String renders the four report lines.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total records: %d\n", r.TotalRecords)

	parts := make([]string, len(r.SalesByRegion))
	for i, rt := range r.SalesByRegion {
		parts[i] = fmt.Sprintf("%s=%s", deref(rt.Region, "NULL"), fmtFloat(rt.Total))
	}
	fmt.Fprintf(&b, "Total sales by region: [%s]\n", strings.Join(parts, ", "))
	fmt.Fprintf(&b, "Average sales per transaction: %s\n", fmtFloat(r.AverageSales))

	dups := make([]string, len(r.Duplicates))
	for i, d := range r.Duplicates {
		dups[i] = fmt.Sprintf("%s=%d", d.OrderID, d.Count)
	}
	fmt.Fprintf(&b, "Duplicate order id: [%s]\n", strings.Join(dups, ", "))
	return b.String()
}

func deref(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

func fmtFloat(f *float64) string {
	if f == nil {
		return "NULL"
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// Options selects the store to validate.
type Options struct {
	Kind  string
	DSN   string
	Table string // defaults to sales.DefaultTable
	Log   *zap.Logger
}

// Validate opens one repository, runs the four queries, and closes it
// whatever the outcome.
func Validate(ctx context.Context, opt Options) (*Report, error) {
	if opt.Table == "" {
		opt.Table = sales.DefaultTable
	}
	log := opt.Log
	if log == nil {
		log = zap.NewNop()
	}

	repo, err := storage.New(ctx, storage.Config{Kind: opt.Kind, DSN: opt.DSN, Table: opt.Table})
	if err != nil {
		return nil, fmt.Errorf("validator: open: %w", err)
	}
	defer repo.Close()

	rep, err := Run(ctx, repo, opt.Table)
	if err != nil {
		return nil, err
	}
	log.Named("validator").Info("validated",
		zap.String("table", opt.Table),
		zap.Int64("total_records", rep.TotalRecords),
		zap.Int("regions", len(rep.SalesByRegion)),
		zap.Int("duplicates", len(rep.Duplicates)))
	return rep, nil
}

// Run executes the queries on an already open repository.
func Run(ctx context.Context, repo storage.Repository, table string) (*Report, error) {
	q := newQueries(repo, table)
	rep := &Report{}

	if err := repo.Get(ctx, &rep.TotalRecords, q.count); err != nil {
		return nil, fmt.Errorf("validator: count: %w", err)
	}
	if err := repo.Select(ctx, &rep.SalesByRegion, q.byRegion); err != nil {
		return nil, fmt.Errorf("validator: sales by region: %w", err)
	}
	if err := repo.Get(ctx, &rep.AverageSales, q.average); err != nil {
		return nil, fmt.Errorf("validator: average: %w", err)
	}
	if err := repo.Select(ctx, &rep.Duplicates, q.duplicates); err != nil {
		return nil, fmt.Errorf("validator: duplicates: %w", err)
	}
	if rep.SalesByRegion == nil {
		rep.SalesByRegion = []RegionTotal{}
	}
	if rep.Duplicates == nil {
		rep.Duplicates = []Duplicate{}
	}
	return rep, nil
}

type queries struct {
	count, byRegion, average, duplicates string
}

func newQueries(repo storage.Repository, table string) queries {
	d := repo.Dialect()
	t := d.QuoteFQN(table)
	region := d.Quote(sales.Region)
	total := d.Quote(sales.TotalSales)
	id := d.Quote(sales.OrderID)

	return queries{
		count:    "SELECT COUNT(*) FROM " + t,
		byRegion: fmt.Sprintf("SELECT %s AS region, SUM(%s) AS total FROM %s GROUP BY %s", region, total, t, region),
		average:  fmt.Sprintf("SELECT AVG(%s) FROM %s", total, t),
		duplicates: fmt.Sprintf("SELECT %s AS order_id, COUNT(*) AS n FROM %s GROUP BY %s HAVING COUNT(*) > 1",
			id, t, id),
	}
}
