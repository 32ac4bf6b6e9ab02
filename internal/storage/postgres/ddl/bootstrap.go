package ddl

import (
	"context"

	gddl "salesetl/internal/ddl"
	"salesetl/internal/storage"
)

// EnsureTable creates the target Postgres table if it does not exist.
func EnsureTable(ctx context.Context, repo storage.Repository, def gddl.LogicalTable) error {
	sql, err := Dialect.CreateTable(def)
	if err != nil {
		return err
	}
	return repo.Exec(ctx, sql)
}
