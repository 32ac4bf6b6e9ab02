// Package storage contains the storage-agnostic contracts shared by the
// relational backends, the backend registry, and the batched loader.
//
// Backends register a Factory from their init function; importing
// salesetl/internal/storage/all makes every built-in backend available to New.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"salesetl/internal/ddl"
)

// Config selects and configures a backend.
type Config struct {
	// Kind is the registered backend name: "sqlite", "postgres", "mssql",
	// "mysql".
	Kind string

	// DSN is the driver connection string (a file path for sqlite).
	DSN string

	// Table is the destination table, optionally schema-qualified.
	Table string

	// Columns is the ordered list of destination columns for CopyFrom.
	Columns []string

	// KeyColumns is the primary key. Backends use it only for diagnostics.
	KeyColumns []string
}

// Repository is an open connection scope to one backend. Callers Close it
// when the logical operation ends; nothing is held across operations.
type Repository interface {
	// Exec runs a statement without results, typically DDL.
	Exec(ctx context.Context, sql string) error

	// Begin starts the transaction all writes of a load go through.
	Begin(ctx context.Context) (Tx, error)

	// Select scans every result row into dest (a pointer to a slice).
	Select(ctx context.Context, dest any, query string, args ...any) error

	// Get scans a single result row into dest.
	Get(ctx context.Context, dest any, query string, args ...any) error

	// Dialect reports how the backend quotes identifiers.
	Dialect() ddl.Dialect

	Close()
}

// Tx is a write transaction.
type Tx interface {
	// CopyFrom appends rows (aligned to columns) to the configured table
	// using the backend's bulk primitive and returns the inserted count.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
