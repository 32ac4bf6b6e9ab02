// Package sqlite implements a SQLite-backed storage.Repository on
// modernc.org/sqlite (pure Go, no cgo). SQLite has no bulk-load API; rows go
// through a prepared INSERT inside the load transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"salesetl/internal/ddl"
	"salesetl/internal/errs"
	"salesetl/internal/storage"
	sqliteddl "salesetl/internal/storage/sqlite/ddl"
)

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	storage.SQLDB
	db  *sql.DB
	cfg Config
}

// NewRepository opens the database file (creating it if needed) and returns
// a Repository plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w: %w", errs.ErrStorageConnectivity, err)
	}
	// One connection: SQLite has a single writer, and ":memory:" databases
	// are per connection.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w: %w", errs.ErrStorageConnectivity, err)
	}

	r := &Repository{
		SQLDB: storage.SQLDB{Name: "sqlite", X: sqlx.NewDb(db, "sqlite"), Classify: classify},
		db:    db,
		cfg:   cfg,
	}
	return r, func() { db.Close() }, nil
}

// Dialect implements storage.Repository.
func (r *Repository) Dialect() ddl.Dialect { return sqliteddl.Dialect }

// Begin starts the load transaction.
func (r *Repository) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin tx: %w", classify(err))
	}
	return &sqliteTx{tx: tx, table: r.cfg.Table}, nil
}

type sqliteTx struct {
	tx    *sql.Tx
	table string
}

// CopyFrom inserts rows through one prepared statement. It stops at the
// first failing row; the caller rolls the transaction back.
func (t *sqliteTx) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	stmt, err := t.tx.PrepareContext(ctx, insertSQL(t.table, columns))
	if err != nil {
		return 0, fmt.Errorf("sqlite: prepare insert: %w", classify(err))
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			return inserted, fmt.Errorf("sqlite: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return inserted, fmt.Errorf("sqlite: insert: %w", classify(err))
		}
		inserted++
	}
	return inserted, nil
}

func (t *sqliteTx) Commit(context.Context) error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", classify(err))
	}
	return nil
}

func (t *sqliteTx) Rollback(context.Context) error {
	if err := t.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("sqlite: rollback: %w", err)
	}
	return nil
}

func insertSQL(table string, columns []string) string {
	cols := make([]string, len(columns))
	ph := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = sqliteddl.Dialect.Quote(c)
		ph[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		sqliteddl.Dialect.QuoteFQN(table), strings.Join(cols, ", "), strings.Join(ph, ", "))
}
