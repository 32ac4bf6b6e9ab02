package ddl

import (
	"context"

	gddl "salesetl/internal/ddl"
	"salesetl/internal/storage"
)

// EnsureTable creates the target SQL Server table if it does not already
// exist. The script is guarded by OBJECT_ID, so repeated calls are safe.
func EnsureTable(ctx context.Context, repo storage.Repository, def gddl.LogicalTable) error {
	sql, err := Dialect.CreateTable(def)
	if err != nil {
		return err
	}
	return repo.Exec(ctx, sql)
}
