//go:build !mattn

package sqlite

import (
	_ "modernc.org/sqlite" // SQLite driver
)

// driverName is the database/sql name of the pure Go driver.
const driverName = "sqlite"
