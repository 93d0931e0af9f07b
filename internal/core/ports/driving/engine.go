package driving

import (
	"context"

	"github.com/imryche/litequery/internal/core/domain"
)

// Engine dispatches parsed queries by name.
type Engine interface {
	// Call runs the named query with the given arguments.
	Call(ctx context.Context, name string, args domain.Args) (domain.Result, error)

	// Query returns the parsed query registered under name.
	Query(name string) (domain.Query, bool)

	// Queries returns every registered query in parse order.
	Queries() []domain.Query

	// Transaction runs fn in one transaction scope.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases the underlying database.
	Close() error
}
