// Package sqlite implements the driven database ports on SQLite.
//
// The adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Building with -tags mattn switches to
// github.com/mattn/go-sqlite3 instead. Connections are managed through
// jmoiron/sqlx:
//
//   - DB: connection and transaction manager (driven.Database)
//   - MigrationStore: migration ledger and schema dump (driven.MigrationStore)
//
// # Connections
//
// Every operation outside a transaction opens a new connection, applies
// Pragmas in order, runs, and closes the connection. A transaction holds
// one connection from BEGIN to COMMIT or ROLLBACK. The transaction scope
// travels in the context.Context passed to WithTx's function; nested WithTx
// calls join it.
//
// # Thread Safety
//
// Separate connections rely on SQLite locking: WAL journaling plus a 5000 ms
// busy timeout. A transaction scope must not be shared between goroutines.
package sqlite
