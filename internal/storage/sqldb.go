package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// SQLDB implements the read and DDL half of Repository on top of sqlx for
// backends that expose a database/sql handle. Classify maps driver errors
// onto the errs taxonomy; nil leaves them unchanged.
type SQLDB struct {
	Name     string
	X        *sqlx.DB
	Classify func(error) error
}

func (d *SQLDB) wrap(op string, err error) error {
	if d.Classify != nil {
		err = d.Classify(err)
	}
	return fmt.Errorf("%s: %s: %w", d.Name, op, err)
}

// Exec runs sql; blank statements are ignored.
func (d *SQLDB) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := d.X.ExecContext(ctx, sql); err != nil {
		return d.wrap("exec", err)
	}
	return nil
}

// Select runs query and scans all rows into dest.
func (d *SQLDB) Select(ctx context.Context, dest any, query string, args ...any) error {
	if err := d.X.SelectContext(ctx, dest, query, args...); err != nil {
		return d.wrap("select", err)
	}
	return nil
}

// Get runs query and scans exactly one row into dest.
func (d *SQLDB) Get(ctx context.Context, dest any, query string, args ...any) error {
	if err := d.X.GetContext(ctx, dest, query, args...); err != nil {
		return d.wrap("get", err)
	}
	return nil
}
