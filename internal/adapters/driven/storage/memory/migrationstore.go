package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/imryche/litequery/internal/core/domain"
	"github.com/imryche/litequery/internal/core/ports/driven"
)

// Ensure MigrationStore implements the interface.
var _ driven.MigrationStore = (*MigrationStore)(nil)

// MigrationStore is an in-memory implementation of driven.MigrationStore.
// Applying a migration records its SQL as one schema entry. Scripts listed
// in Failures fail without touching the ledger or the schema.
type MigrationStore struct {
	mu       sync.RWMutex
	ledger   []domain.LedgerEntry
	schema   []string
	hasTable bool
	failures map[string]error
	now      func() time.Time
}

// NewMigrationStore creates a new in-memory migration store.
func NewMigrationStore() *MigrationStore {
	return &MigrationStore{
		failures: make(map[string]error),
		now:      time.Now,
	}
}

// FailOn makes Apply fail with err for the given filename.
func (s *MigrationStore) FailOn(filename string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[filename] = err
}

// HasLedger returns true once EnsureLedger has been called.
func (s *MigrationStore) HasLedger() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasTable
}

// EnsureLedger marks the ledger table as created.
func (s *MigrationStore) EnsureLedger(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasTable = true
	return nil
}

// Applied returns the ledger rows in insertion order.
func (s *MigrationStore) Applied(_ context.Context) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasTable {
		return nil, errors.New("no such table: migrations")
	}
	out := make([]domain.LedgerEntry, len(s.ledger))
	copy(out, s.ledger)
	return out, nil
}

// Apply records the migration in the ledger and the schema.
func (s *MigrationStore) Apply(_ context.Context, m domain.Migration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failures[m.Filename]; ok {
		return err
	}
	for _, e := range s.ledger {
		if e.Filename == m.Filename {
			return errors.New("UNIQUE constraint failed: migrations.filename")
		}
	}
	s.ledger = append(s.ledger, domain.LedgerEntry{
		ID:       int64(len(s.ledger) + 1),
		Filename: m.Filename,
		RunAt:    s.now().UTC().Truncate(time.Second),
	})
	if sql := strings.TrimSuffix(strings.TrimSpace(m.SQL), ";"); sql != "" {
		s.schema = append(s.schema, sql)
	}
	return nil
}

// DumpSchema returns the recorded schema entries.
func (s *MigrationStore) DumpSchema(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.schema))
	copy(out, s.schema)
	return out, nil
}
