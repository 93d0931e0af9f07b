package driven

import (
	"context"

	"github.com/imryche/litequery/internal/core/domain"
)

// MigrationStore persists the migration ledger and applies scripts.
type MigrationStore interface {
	// EnsureLedger creates the ledger table if it does not exist.
	EnsureLedger(ctx context.Context) error

	// Applied returns the ledger rows in the order they were recorded.
	Applied(ctx context.Context) ([]domain.LedgerEntry, error)

	// Apply runs every statement of the migration and records it in the
	// ledger inside one transaction. On failure nothing from the migration
	// persists.
	Apply(ctx context.Context, m domain.Migration) error

	// DumpSchema returns the creation SQL of every catalog object in
	// catalog order.
	DumpSchema(ctx context.Context) ([]string, error)
}
