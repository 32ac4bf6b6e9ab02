package builtin

import (
	"strings"

	"salesetl/pkg/records"
)

// Normalize trims string values and folds non-breaking spaces (including the
// mis-decoded "Â " sequence common in Latin-1 exports) to plain spaces. With
// Fields empty every string field is normalized.
type Normalize struct {
	Fields []string
}

var nbspReplacer = strings.NewReplacer("\u00c2\u00a0", " ", "\u00a0", " ")

func (n Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		if len(n.Fields) == 0 {
			for k, v := range r {
				if s, ok := v.(string); ok {
					r[k] = normalizeString(s)
				}
			}
			continue
		}
		for _, k := range n.Fields {
			if s, ok := r[k].(string); ok {
				r[k] = normalizeString(s)
			}
		}
	}
	return in
}

func normalizeString(s string) string {
	return strings.TrimSpace(nbspReplacer.Replace(s))
}
