package file

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Entry pairs a region label with the extract path that feeds it.
type Entry struct {
	Region string
	Path   string
}

// ParseEntry parses a "region=path" token. Surrounding whitespace is trimmed
// and both halves must be non-empty.
func ParseEntry(s string) (Entry, error) {
	region, path, ok := strings.Cut(s, "=")
	region, path = strings.TrimSpace(region), strings.TrimSpace(path)
	if !ok || region == "" || path == "" {
		return Entry{}, fmt.Errorf("source %q: want region=path", s)
	}
	return Entry{Region: region, Path: path}, nil
}

// ReadList reads a source list file: one "region=path" entry per line.
// Blank lines and lines starting with '#' (after trimming) are skipped. The
// order of entries is preserved and fixes the combine order.
func ReadList(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Entry
	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e, err := ParseEntry(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, n, err)
		}
		out = append(out, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
