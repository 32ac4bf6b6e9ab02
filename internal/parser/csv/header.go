package csv

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizeHeaders produces canonical column names: BOM stripped, whitespace
// trimmed, diacritics folded to ASCII. Case is preserved because the store
// uses the extract's CamelCase names. Blank names become "col_N"; duplicate
// names are an error since rows are keyed by name.
func normalizeHeaders(h []string) ([]string, error) {
	h = StripHeaderBOM(h)
	out := make([]string, len(h))
	seen := make(map[string]int, len(h))
	blank := 0
	for i, col := range h {
		c := foldASCII(strings.TrimSpace(col))
		if c == "" {
			blank++
			c = fmt.Sprintf("col_%d", i)
		}
		if j, dup := seen[c]; dup {
			return nil, fmt.Errorf("duplicate header %q at columns %d and %d", c, j, i)
		}
		seen[c] = i
		out[i] = c
	}
	if blank == len(h) {
		return nil, fmt.Errorf("header row has no column names")
	}
	return out, nil
}

// stripMarks pools NFD, mark-removal, NFC chains. A chain carries buffer
// state and sources are parsed concurrently, so each call borrows its own.
var stripMarks = sync.Pool{New: func() any {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}}

// foldASCII strips combining marks, e.g. "Množství" -> "Mnozstvi".
func foldASCII(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			t := stripMarks.Get().(transform.Transformer)
			out, _, err := transform.String(t, s)
			stripMarks.Put(t)
			if err != nil {
				return s
			}
			return out
		}
	}
	return s
}
