package driven

import (
	"context"

	"github.com/imryche/litequery/internal/core/domain"
)

// Executor runs statements on one acquired connection. Arguments are
// bound by name.
type Executor interface {
	// Query runs a statement and returns every row.
	Query(ctx context.Context, query string, args domain.Args) (domain.RowSet, error)

	// QueryRow runs a statement and returns its first row. The boolean is
	// false when no row matched.
	QueryRow(ctx context.Context, query string, args domain.Args) (domain.Row, bool, error)

	// Exec runs a statement that does not return rows.
	Exec(ctx context.Context, query string, args domain.Args) (domain.ExecResult, error)
}

// Database owns the physical connection lifecycle and transaction scoping.
type Database interface {
	// WithConn runs fn on a connection. Without a transaction scope in ctx
	// a fresh connection is opened and closed around fn; inside a scope the
	// scope's connection is reused and left open.
	WithConn(ctx context.Context, fn func(ctx context.Context, exec Executor) error) error

	// WithTx runs fn inside a transaction scope carried by the context passed
	// to fn. The transaction commits when fn returns nil and rolls back
	// otherwise; fn's error is returned unchanged. Nested calls join the
	// enclosing scope instead of beginning a new transaction.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// InTransaction returns true if ctx carries an active transaction scope.
	InTransaction(ctx context.Context) bool

	// Close releases the database handle.
	Close() error
}
