// Package all wires all built-in storage backends into the storage factory.
//
// Importing it (as a blank import) runs the init function of each backend,
// which registers its factory and DDL bootstrapper:
//
//   - "sqlite"   (salesetl/internal/storage/sqlite)
//   - "postgres" (salesetl/internal/storage/postgres)
//   - "mssql"    (salesetl/internal/storage/mssql)
//   - "mysql"    (salesetl/internal/storage/mysql)
//
// A binary that needs only a subset can import the backends it wants instead.
package all

import (
	_ "salesetl/internal/storage/mssql"
	_ "salesetl/internal/storage/mysql"
	_ "salesetl/internal/storage/postgres"
	_ "salesetl/internal/storage/sqlite"
)
