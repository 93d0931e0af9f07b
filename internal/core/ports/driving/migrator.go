package driving

import (
	"context"

	"github.com/imryche/litequery/internal/core/domain"
)

// Migrator applies schema migrations.
type Migrator interface {
	// Migrate applies every pending migration in order and returns the
	// filenames applied. An empty result means nothing was pending.
	Migrate(ctx context.Context) ([]string, error)

	// Status returns every discovered migration with its applied time.
	Status(ctx context.Context) ([]domain.Migration, error)

	// Create writes a new, empty migration file and returns its path.
	Create(name string) (string, error)

	// Watch applies migrations whenever the migrations directory changes,
	// until ctx is cancelled.
	Watch(ctx context.Context) error
}
