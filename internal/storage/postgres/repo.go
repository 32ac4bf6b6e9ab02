// Package postgres implements a Postgres repository using pgx v5. Rows are
// written with COPY inside the load transaction; reads and DDL go through
// sqlx over the same pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"salesetl/internal/ddl"
	"salesetl/internal/errs"
	"salesetl/internal/storage"
	pgddl "salesetl/internal/storage/postgres/ddl"
)

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	storage.SQLDB
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: pgxpool: %w: %w", errs.ErrStorageConnectivity, err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: ping: %w: %w", errs.ErrStorageConnectivity, err)
	}

	db := stdlib.OpenDBFromPool(pool)
	r := &Repository{
		SQLDB: storage.SQLDB{Name: "postgres", X: sqlx.NewDb(db, "pgx"), Classify: classify},
		pool:  pool,
		cfg:   cfg,
	}
	closeFn := func() {
		_ = db.Close()
		pool.Close()
	}
	return r, closeFn, nil
}

// Dialect implements storage.Repository.
func (r *Repository) Dialect() ddl.Dialect { return pgddl.Dialect }

// Begin starts the load transaction on a pooled connection.
func (r *Repository) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: begin tx: %w", classify(err))
	}
	return &pgTx{tx: tx, ident: splitFQN(r.cfg.Table)}, nil
}

type pgTx struct {
	tx    pgx.Tx
	ident pgx.Identifier
}

// CopyFrom streams rows with the COPY protocol.
func (t *pgTx) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("postgres: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := t.tx.CopyFrom(ctx, t.ident, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("postgres: copy into %s: %w", t.ident.Sanitize(), classify(err))
	}
	return n, nil
}

func (t *pgTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", classify(err))
	}
	return nil
}

func (t *pgTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("postgres: rollback: %w", err)
	}
	return nil
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
// If no dot is present, returns {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
