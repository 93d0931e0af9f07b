//go:build mattn

package sqlite

import (
	_ "github.com/mattn/go-sqlite3" // SQLite driver (CGO)
)

// driverName is the database/sql name of the CGO driver.
const driverName = "sqlite3"
