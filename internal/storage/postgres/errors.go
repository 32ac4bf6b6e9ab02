package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"salesetl/internal/errs"
)

// SQLSTATE codes mapped by classify.
const (
	uniqueViolation  = "23505"
	notNullViolation = "23502"
)

// classify maps pgx/pgconn errors onto the errs taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == uniqueViolation, pgErr.Code == notNullViolation:
			return fmt.Errorf("%w: %s (%s): %w", errs.ErrConstraintViolation, pgErr.Detail, pgErr.Code, err)
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "28"):
			// Class 08 is connection exceptions, 28 is auth failure.
			return fmt.Errorf("%w: %w", errs.ErrStorageConnectivity, err)
		}
		return err
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %w", errs.ErrStorageConnectivity, err)
	}
	return err
}
