package storage

// This file implements the generic batched loader: rows are split into
// batches of batchSize and each batch goes through a backend CopyFn (Postgres
// COPY, SQL Server bulk copy, multi-row INSERT, ...).
//
// On every successful flush a progress line is logged with running totals and
// the instantaneous rows/sec since the previous flush.

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CopyFn abstracts a backend's bulk insert. It inserts rows aligned to
// columns and returns the number of rows inserted.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches sends rows to copyFn in batches of batchSize. It returns the
// rows reported inserted, the number of successful batches and the first
// error. The context is checked between batches.
func LoadBatches(
	ctx context.Context,
	log *zap.Logger,
	columns []string,
	rows [][]any,
	batchSize int,
	copyFn CopyFn,
) (total, batches int64, err error) {
	if batchSize <= 0 {
		return 0, 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, 0, fmt.Errorf("copyFn must not be nil")
	}
	if log == nil {
		log = zap.NewNop()
	}

	var (
		start     = time.Now()
		lastFlush = start
	)
	for lo := 0; lo < len(rows); lo += batchSize {
		if err := ctx.Err(); err != nil {
			return total, batches, err
		}
		hi := min(lo+batchSize, len(rows))

		n, err := copyFn(ctx, columns, rows[lo:hi])
		total += n
		if err != nil {
			log.Warn("batch copy failed",
				zap.Int64("batch", batches+1),
				zap.Int64("inserted", n),
				zap.Int64("total_inserted", total),
				zap.Error(err))
			return total, batches, err
		}

		batches++
		now := time.Now()
		since := now.Sub(lastFlush)
		rps := float64(0)
		if since > 0 {
			rps = float64(n) / since.Seconds()
		}
		log.Debug("batch flushed",
			zap.Int64("batch", batches),
			zap.Float64("rps", rps),
			zap.Int64("inserted", n),
			zap.Int64("total_inserted", total),
			zap.Duration("elapsed", now.Sub(start).Truncate(time.Millisecond)),
			zap.Duration("since_last", since.Truncate(time.Millisecond)))
		lastFlush = now
	}
	log.Info("load complete",
		zap.Int64("total_inserted", total),
		zap.Int64("batches", batches),
		zap.Duration("elapsed", time.Since(start).Truncate(time.Millisecond)))
	return total, batches, nil
}
