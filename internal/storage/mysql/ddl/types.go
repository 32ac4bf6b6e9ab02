package ddl

import "strings"

// MapType maps a logical type into a MySQL column type.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "float", "double", "real":
		return "DOUBLE"
	case "numeric", "decimal":
		return "DECIMAL(38, 10)"
	case "bool", "boolean":
		return "TINYINT(1)"
	default:
		return "TEXT"
	}
}

// KeyType maps primary key columns.
func KeyType(kind string) string {
	if t := MapType(kind); t != "TEXT" {
		return t
	}
	return "VARCHAR(255)"
}
