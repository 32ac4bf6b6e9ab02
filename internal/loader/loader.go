// Package loader persists a combined sales table into the configured store.
//
// Each call is one scoped operation: open a repository, create the table if
// asked to, append every row inside a single transaction, commit, close.
// Nothing stays open between calls. A failed append rolls the whole load
// back, so a primary-key collision leaves the store exactly as it was.
package loader

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"salesetl/internal/dataset"
	"salesetl/internal/errs"
	"salesetl/internal/metrics"
	"salesetl/internal/sales"
	"salesetl/internal/storage"
)

// DefaultBatchSize is used when Options.BatchSize is not positive.
const DefaultBatchSize = 500

// Options selects the target store and load behaviour.
type Options struct {
	Kind  string // storage kind, e.g. "sqlite"
	DSN   string
	Table string // defaults to sales.DefaultTable

	// AutoCreate issues an idempotent CREATE TABLE before writing.
	AutoCreate bool

	BatchSize int
	Job       string // metrics label
	Log       *zap.Logger
}

// Result reports what a successful load wrote.
type Result struct {
	Rows     int64         `json:"rows"`
	Batches  int64         `json:"batches"`
	Duration time.Duration `json:"duration"`
}

// Load appends tbl to the store described by opt. tbl must carry
// sales.CleansedSchema.
func Load(ctx context.Context, tbl *dataset.Table, opt Options) (Result, error) {
	if tbl == nil {
		return Result{}, fmt.Errorf("loader: nil table")
	}
	if d := tbl.Schema.Diff(sales.CleansedSchema); d != "" {
		return Result{}, fmt.Errorf("loader: %w: %s", errs.ErrSchemaMismatch, d)
	}
	if opt.Table == "" {
		opt.Table = sales.DefaultTable
	}
	if opt.BatchSize <= 0 {
		opt.BatchSize = DefaultBatchSize
	}
	log := opt.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("loader").With(zap.String("kind", opt.Kind), zap.String("table", opt.Table))

	start := time.Now()
	def := sales.PersistedTable(opt.Table)

	repo, err := storage.New(ctx, storage.Config{
		Kind:       opt.Kind,
		DSN:        opt.DSN,
		Table:      opt.Table,
		Columns:    sales.WriteColumns,
		KeyColumns: []string{sales.OrderID},
	})
	if err != nil {
		return Result{}, fmt.Errorf("loader: open: %w", err)
	}
	defer repo.Close()

	if opt.AutoCreate {
		if err := storage.EnsureTable(ctx, opt.Kind, repo, def); err != nil {
			return Result{}, fmt.Errorf("loader: %w", err)
		}
	}

	tx, err := repo.Begin(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("loader: %w", err)
	}

	rows := sales.ToRows(tbl.Rows)
	n, batches, err := storage.LoadBatches(ctx, log, sales.WriteColumns, rows, opt.BatchSize, tx.CopyFrom)
	if err == nil {
		err = tx.Commit(ctx)
	}
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			log.Warn("rollback failed", zap.Error(rbErr))
		}
		log.Error("load rolled back", zap.Int64("attempted", int64(len(rows))), zap.Error(err))
		return Result{}, fmt.Errorf("loader: %w", err)
	}

	metrics.RecordBatches(opt.Job, batches)
	res := Result{Rows: n, Batches: batches, Duration: time.Since(start)}
	log.Info("committed",
		zap.Int64("rows", res.Rows),
		zap.Int64("batches", res.Batches),
		zap.Duration("elapsed", res.Duration.Truncate(time.Millisecond)))
	return res, nil
}
