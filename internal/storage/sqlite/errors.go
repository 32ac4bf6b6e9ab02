package sqlite

import (
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"salesetl/internal/errs"
)

// classify maps SQLite result codes onto the errs taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}
	if kind := codeKind(se.Code(), se.Error()); kind != nil {
		return fmt.Errorf("%w: %w", kind, err)
	}
	return err
}

// codeKind returns the sentinel for a result code, or nil. Extended codes
// are matched on their primary code (low byte) unless listed explicitly.
func codeKind(code int, msg string) error {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return errs.ErrConstraintViolation
	}
	switch code & 0xff {
	case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_PERM, sqlite3.SQLITE_READONLY:
		return errs.ErrStorageConnectivity
	case sqlite3.SQLITE_CONSTRAINT:
		// Without extended result codes only the primary code is set.
		if strings.Contains(msg, "UNIQUE") || strings.Contains(msg, "PRIMARY KEY") {
			return errs.ErrConstraintViolation
		}
	}
	return nil
}
