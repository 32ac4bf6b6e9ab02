// Package mssql implements a Microsoft SQL Server repository. Rows are
// written with the go-mssqldb bulk copy API inside the load transaction;
// reads and DDL go through sqlx.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"salesetl/internal/ddl"
	"salesetl/internal/errs"
	"salesetl/internal/storage"
	msddl "salesetl/internal/storage/mssql/ddl"
)

// Repository is an MSSQL-backed implementation of storage.Repository.
type Repository struct {
	storage.SQLDB
	db  *sql.DB
	cfg Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql: dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mssql: open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mssql: ping: %w: %w", errs.ErrStorageConnectivity, err)
	}
	r := &Repository{
		SQLDB: storage.SQLDB{Name: "mssql", X: sqlx.NewDb(db, "sqlserver"), Classify: classify},
		db:    db,
		cfg:   cfg,
	}
	return r, func() { _ = db.Close() }, nil
}

// Dialect implements storage.Repository.
func (r *Repository) Dialect() ddl.Dialect { return msddl.Dialect }

// Begin starts the load transaction.
func (r *Repository) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("mssql: begin tx: %w", classify(err))
	}
	return &msTx{tx: tx, table: r.cfg.Table}, nil
}

type msTx struct {
	tx    *sql.Tx
	table string
}

// CopyFrom performs a bulk insert into the target table. Each call is one
// bulk batch; the server checks constraints when the batch is flushed.
func (t *msTx) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mssql: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	opts := mssql.BulkOptions{CheckConstraints: true}
	stmt, err := t.tx.PrepareContext(ctx, mssql.CopyIn(t.table, opts, columns...))
	if err != nil {
		return 0, fmt.Errorf("mssql: prepare bulk: %w", classify(err))
	}
	for i := range rows {
		if len(rows[i]) != len(columns) {
			_ = stmt.Close()
			return 0, fmt.Errorf("mssql: CopyFrom: row %d length %d != columns length %d", i, len(rows[i]), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			return 0, fmt.Errorf("mssql: bulk row %d: %w", i, classify(err))
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("mssql: bulk finalize: %w", classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mssql: rows affected: %w", err)
	}
	return n, nil
}

func (t *msTx) Commit(context.Context) error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("mssql: commit: %w", classify(err))
	}
	return nil
}

func (t *msTx) Rollback(context.Context) error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("mssql: rollback: %w", err)
	}
	return nil
}
