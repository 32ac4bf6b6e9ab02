// Package errs holds the pipeline's error taxonomy. Stages wrap one of the
// sentinels below with %w so that callers can branch with errors.Is while the
// message keeps the stage-specific detail.
package errs

import "errors"

var (
	// ErrIngest marks an unreadable or malformed source file.
	ErrIngest = errors.New("ingest error")
	// ErrTransform marks a missing or wholly non-coercible source column.
	ErrTransform = errors.New("transform error")
	// ErrSchemaMismatch marks combiner inputs whose schemas differ.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrConstraintViolation marks a primary-key collision on write.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrStorageConnectivity marks a store that cannot be reached.
	ErrStorageConnectivity = errors.New("storage connectivity error")
)

var kinds = []struct {
	err   error
	label string
}{
	{ErrIngest, "ingest"},
	{ErrTransform, "transform"},
	{ErrSchemaMismatch, "schema_mismatch"},
	{ErrConstraintViolation, "constraint_violation"},
	{ErrStorageConnectivity, "storage_connectivity"},
}

// Kind returns a short label for err suitable for logs and metric labels.
// Errors outside the taxonomy map to "internal"; nil maps to "".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.label
		}
	}
	return "internal"
}
