// Package mysql implements a MySQL repository on go-sql-driver/mysql. MySQL
// has no COPY; each batch becomes one multi-row INSERT inside the load
// transaction.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"salesetl/internal/ddl"
	"salesetl/internal/errs"
	"salesetl/internal/storage"
	myddl "salesetl/internal/storage/mysql/ddl"
)

// maxPlaceholders is the server-side limit on bound parameters per statement.
const maxPlaceholders = 65535

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	storage.SQLDB
	db  *sql.DB
	cfg Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	mc, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql: dsn: %w", err)
	}
	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql: connector: %w", err)
	}
	db := sql.OpenDB(connector)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mysql: ping: %w: %w", errs.ErrStorageConnectivity, err)
	}
	r := &Repository{
		SQLDB: storage.SQLDB{Name: "mysql", X: sqlx.NewDb(db, "mysql"), Classify: classify},
		db:    db,
		cfg:   cfg,
	}
	return r, func() { _ = db.Close() }, nil
}

// Dialect implements storage.Repository.
func (r *Repository) Dialect() ddl.Dialect { return myddl.Dialect }

// Begin starts the load transaction.
func (r *Repository) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("mysql: begin tx: %w", classify(err))
	}
	return &myTx{tx: tx, table: r.cfg.Table}, nil
}

type myTx struct {
	tx    *sql.Tx
	table string
}

// CopyFrom writes rows with multi-row INSERT statements, splitting when a
// batch would exceed the placeholder limit.
func (t *myTx) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyFrom: columns must not be empty")
	}
	per := maxPlaceholders / len(columns)

	var total int64
	for start := 0; start < len(rows); start += per {
		end := min(start+per, len(rows))
		chunk := rows[start:end]

		args := make([]any, 0, len(chunk)*len(columns))
		for i, row := range chunk {
			if len(row) != len(columns) {
				return total, fmt.Errorf("mysql: CopyFrom: row %d length %d != columns length %d", start+i, len(row), len(columns))
			}
			args = append(args, row...)
		}
		res, err := t.tx.ExecContext(ctx, insertSQL(t.table, columns, len(chunk)), args...)
		if err != nil {
			return total, fmt.Errorf("mysql: insert: %w", classify(err))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("mysql: rows affected: %w", err)
		}
		total += n
	}
	return total, nil
}

func (t *myTx) Commit(context.Context) error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("mysql: commit: %w", classify(err))
	}
	return nil
}

func (t *myTx) Rollback(context.Context) error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("mysql: rollback: %w", err)
	}
	return nil
}

// insertSQL renders INSERT INTO `t` (`a`, `b`) VALUES (?, ?), (?, ?)...
func insertSQL(table string, columns []string, nrows int) string {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = myddl.Dialect.Quote(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", myddl.Dialect.QuoteFQN(table), strings.Join(cols, ", "))
	for i := 0; i < nrows; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(tuple)
	}
	return b.String()
}
