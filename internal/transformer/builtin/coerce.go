package builtin

import (
	"math"
	"strconv"
	"strings"

	"salesetl/pkg/records"
)

// Coerce casts fields to "int" (int64), "float" (float64) or "string".
// A value that cannot be cast becomes nil and the row is kept; OnFail, when
// set, sees every such cell.
type Coerce struct {
	Types  map[string]string
	OnFail func(field string, v any)
}

func (c Coerce) Apply(in []records.Record) []records.Record {
	if len(c.Types) == 0 {
		return in
	}
	for _, r := range in {
		for field, typ := range c.Types {
			v, ok := r[field]
			if !ok || v == nil {
				continue
			}
			out, ok := CoerceValue(v, typ)
			if !ok && c.OnFail != nil {
				c.OnFail(field, v)
			}
			r[field] = out
		}
	}
	return in
}

// CoerceValue casts v to typ. Floats cast to int truncate toward zero, and
// numeric strings are parsed after trimming. An empty string is null.
// Unknown target types pass v through.
func CoerceValue(v any, typ string) (any, bool) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, true
		}
		v = s
	}

	switch typ {
	case "int":
		switch t := v.(type) {
		case int64:
			return t, true
		case int:
			return int64(t), true
		case float64:
			return truncInt(t)
		case string:
			if n, err := strconv.ParseInt(t, 10, 64); err == nil {
				return n, true
			}
			if f, err := strconv.ParseFloat(t, 64); err == nil {
				return truncInt(f)
			}
		}
		return nil, false

	case "float":
		switch t := v.(type) {
		case float64:
			if math.IsNaN(t) || math.IsInf(t, 0) {
				return nil, false
			}
			return t, true
		case int64:
			return float64(t), true
		case int:
			return float64(t), true
		case string:
			f, err := strconv.ParseFloat(t, 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, false
			}
			return f, true
		}
		return nil, false

	case "string":
		switch t := v.(type) {
		case string:
			return t, true
		case int64:
			return strconv.FormatInt(t, 10), true
		case int:
			return strconv.Itoa(t), true
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64), true
		case bool:
			return strconv.FormatBool(t), true
		}
		return nil, false
	}
	return v, true
}

func truncInt(f float64) (any, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return nil, false
	}
	return int64(f), true
}
