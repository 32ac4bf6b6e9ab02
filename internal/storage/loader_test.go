package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func rowsN(n int) [][]any {
	out := make([][]any, n)
	for i := range out {
		out[i] = []any{i, "x"}
	}
	return out
}

func TestLoadBatchesSplitsRows(t *testing.T) {
	t.Parallel()

	var sizes []int
	copyFn := func(_ context.Context, cols []string, rows [][]any) (int64, error) {
		assert.Equal(t, []string{"c1", "c2"}, cols)
		sizes = append(sizes, len(rows))
		return int64(len(rows)), nil
	}

	core, logs := observer.New(zap.DebugLevel)
	total, batches, err := LoadBatches(context.Background(), zap.New(core), []string{"c1", "c2"}, rowsN(7), 3, copyFn)
	require.NoError(t, err)
	assert.EqualValues(t, 7, total)
	assert.EqualValues(t, 3, batches)
	assert.Equal(t, []int{3, 3, 1}, sizes)
	assert.Equal(t, 3, logs.FilterMessage("batch flushed").Len())
	assert.Equal(t, 1, logs.FilterMessage("load complete").Len())
}

func TestLoadBatchesEmpty(t *testing.T) {
	t.Parallel()

	called := false
	total, batches, err := LoadBatches(context.Background(), nil, []string{"c"}, nil, 10,
		func(context.Context, []string, [][]any) (int64, error) { called = true; return 0, nil })
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, batches)
	assert.False(t, called)
}

func TestLoadBatchesStopsOnError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("copy failed")
	calls := 0
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		calls++
		if calls == 2 {
			return 0, wantErr
		}
		return int64(len(rows)), nil
	}

	total, batches, err := LoadBatches(context.Background(), nil, []string{"c"}, rowsN(5), 2, copyFn)
	require.ErrorIs(t, err, wantErr)
	assert.EqualValues(t, 2, total)
	assert.EqualValues(t, 1, batches)
	assert.Equal(t, 2, calls)
}

func TestLoadBatchesHonorsCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		cancel()
		return int64(len(rows)), nil
	}
	total, _, err := LoadBatches(ctx, nil, []string{"c"}, rowsN(4), 2, copyFn)
	require.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 2, total)
}

func TestLoadBatchesArgValidation(t *testing.T) {
	t.Parallel()

	_, _, err := LoadBatches(context.Background(), nil, nil, rowsN(1), 0, nil)
	require.Error(t, err)
	_, _, err = LoadBatches(context.Background(), nil, nil, rowsN(1), 1, nil)
	require.Error(t, err)
}
