// Package records defines the row representation shared by the parser and
// the transformers.
package records

// Record is a single row keyed by column name. Missing keys and nil values
// are both treated as SQL NULL.
type Record map[string]any

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IsNull reports whether field is absent, nil, or an empty string.
func (r Record) IsNull(field string) bool {
	v, ok := r[field]
	if !ok || v == nil {
		return true
	}
	if s, isStr := v.(string); isStr && s == "" {
		return true
	}
	return false
}
