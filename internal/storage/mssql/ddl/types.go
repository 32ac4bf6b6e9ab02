package ddl

import "strings"

// MapType maps a logical type into a SQL Server column type.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "float", "double", "real":
		return "FLOAT"
	case "numeric", "decimal":
		return "DECIMAL(38, 10)"
	case "bool", "boolean":
		return "BIT"
	default:
		return "NVARCHAR(MAX)"
	}
}

// KeyType maps primary key columns. NVARCHAR(MAX) cannot be indexed.
func KeyType(kind string) string {
	if t := MapType(kind); t != "NVARCHAR(MAX)" {
		return t
	}
	return "NVARCHAR(450)"
}
