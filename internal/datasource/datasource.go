// Package datasource defines where raw extract bytes come from.
package datasource

import (
	"context"
	"io"
)

// Source opens a stream of raw extract bytes. Name identifies the source in
// logs and error messages.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Name() string
}
