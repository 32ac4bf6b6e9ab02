package mysql

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"

	"salesetl/internal/errs"
)

// MySQL server error numbers mapped by classify.
const (
	erDupEntry     = 1062
	erBadNullError = 1048
	erAccessDenied = 1045
	erBadDB        = 1049
)

// classify maps driver errors onto the errs taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case erDupEntry, erBadNullError:
			return fmt.Errorf("%w: %w", errs.ErrConstraintViolation, err)
		case erAccessDenied, erBadDB:
			return fmt.Errorf("%w: %w", errs.ErrStorageConnectivity, err)
		}
		return err
	}
	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %w", errs.ErrStorageConnectivity, err)
	}
	return err
}
