package storage

import (
	"context"
	"fmt"
	"sync"

	"salesetl/internal/ddl"
)

// DDLBootstrapper creates def through repo if it does not exist yet. It must
// be idempotent and must never alter or drop an existing table.
type DDLBootstrapper func(ctx context.Context, repo Repository, def ddl.LogicalTable) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the DDLBootstrapper for a storage kind.
// Backends call it from init.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable runs the bootstrapper registered for kind.
func EnsureTable(ctx context.Context, kind string, repo Repository, def ddl.LogicalTable) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	if err := fn(ctx, repo, def); err != nil {
		return fmt.Errorf("ensure table %s: %w", def.FQN, err)
	}
	return nil
}
