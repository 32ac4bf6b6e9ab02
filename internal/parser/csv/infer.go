package csv

import (
	"strconv"

	"salesetl/internal/dataset"
)

// inferTypes picks the narrowest type per column that every non-null cell
// satisfies, widening int -> float -> string. Columns with no non-null cell
// are string.
func inferTypes(width int, cells [][]*string) []dataset.Type {
	const (
		unseen = iota
		asInt
		asFloat
		asString
	)
	state := make([]int, width)
	for _, row := range cells {
		for i, v := range row {
			if v == nil || state[i] == asString {
				continue
			}
			switch {
			case state[i] <= asInt && isInt(*v):
				state[i] = asInt
			case isFloat(*v):
				state[i] = asFloat
			default:
				state[i] = asString
			}
		}
	}

	out := make([]dataset.Type, width)
	for i, s := range state {
		switch s {
		case asInt:
			out[i] = dataset.Int
		case asFloat:
			out[i] = dataset.Float
		default:
			out[i] = dataset.String
		}
	}
	return out
}

func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isFloat(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// typedValue converts a raw cell to the column's inferred type. Inference
// guarantees the parse succeeds; nil stays nil.
func typedValue(v *string, t dataset.Type) any {
	if v == nil {
		return nil
	}
	switch t {
	case dataset.Int:
		n, _ := strconv.ParseInt(*v, 10, 64)
		return n
	case dataset.Float:
		f, _ := strconv.ParseFloat(*v, 64)
		return f
	default:
		return *v
	}
}
