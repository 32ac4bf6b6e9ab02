package mssql

import (
	"errors"
	"fmt"
	"net"

	mssql "github.com/microsoft/go-mssqldb"

	"salesetl/internal/errs"
)

// SQL Server error numbers mapped by classify.
const (
	errPrimaryKey  = 2627 // violation of PRIMARY KEY or UNIQUE constraint
	errUniqueIndex = 2601 // duplicate key row in unique index
	errNotNull     = 515  // cannot insert NULL into column
	errLogin       = 18456
)

// classify maps driver errors onto the errs taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var me mssql.Error
	if errors.As(err, &me) {
		switch me.SQLErrorNumber() {
		case errPrimaryKey, errUniqueIndex, errNotNull:
			return fmt.Errorf("%w: %w", errs.ErrConstraintViolation, err)
		case errLogin:
			return fmt.Errorf("%w: %w", errs.ErrStorageConnectivity, err)
		}
		return err
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return fmt.Errorf("%w: %w", errs.ErrStorageConnectivity, err)
	}
	return err
}
