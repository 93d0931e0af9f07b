package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/imryche/litequery/internal/core/domain"
	"github.com/imryche/litequery/internal/core/ports/driven"
	"github.com/imryche/litequery/internal/logger"
)

const createLedgerSQL = `
	CREATE TABLE IF NOT EXISTS migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL UNIQUE,
		run_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

const insertLedgerSQL = `INSERT INTO migrations (filename) VALUES (:filename)`

// Ensure MigrationStore implements the interface.
var _ driven.MigrationStore = (*MigrationStore)(nil)

// MigrationStore keeps the migration ledger in the database it migrates.
type MigrationStore struct {
	db *DB
}

// NewMigrationStore creates a migration store on db.
func NewMigrationStore(db *DB) *MigrationStore {
	return &MigrationStore{db: db}
}

// ledgerRow mirrors one row of the migrations table.
type ledgerRow struct {
	ID       int64  `db:"id"`
	Filename string `db:"filename"`
	RunAt    string `db:"run_at"`
}

// withConn runs fn on a fresh connection with the pragmas applied.
func (s *MigrationStore) withConn(ctx context.Context, fn func(conn *sqlx.Conn) error) error {
	conn, err := s.db.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(conn)
}

// EnsureLedger creates the migrations table if it does not exist.
func (s *MigrationStore) EnsureLedger(ctx context.Context) error {
	return s.withConn(ctx, func(conn *sqlx.Conn) error {
		if _, err := conn.ExecContext(ctx, createLedgerSQL); err != nil {
			return fmt.Errorf("creating migrations table: %w", err)
		}
		return nil
	})
}

// Applied returns the ledger rows ordered by id.
func (s *MigrationStore) Applied(ctx context.Context) ([]domain.LedgerEntry, error) {
	var rows []ledgerRow
	err := s.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &rows, `SELECT id, filename, run_at FROM migrations ORDER BY id`)
	})
	if err != nil {
		return nil, fmt.Errorf("listing applied migrations: %w", err)
	}

	entries := make([]domain.LedgerEntry, len(rows))
	for i, r := range rows {
		runAt, _ := domain.ParseTimestamp(r.RunAt)
		entries[i] = domain.LedgerEntry{ID: r.ID, Filename: r.Filename, RunAt: runAt}
	}
	return entries, nil
}

// Apply runs the script's statements in order and records the script in
// the ledger, all in one transaction.
func (s *MigrationStore) Apply(ctx context.Context, m domain.Migration) error {
	return s.db.WithTx(ctx, func(ctx context.Context) error {
		tx := s.db.scope(ctx).tx
		for i, stmt := range splitStatements(m.SQL) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("statement %d: %w", i+1, err)
			}
		}
		if _, err := tx.NamedExecContext(ctx, insertLedgerSQL, ledgerRow{Filename: m.Filename}); err != nil {
			return fmt.Errorf("recording migration: %w", err)
		}
		logger.Debug("applied %s", m.Filename)
		return nil
	})
}

// DumpSchema returns the creation SQL of every catalog object in catalog
// order.
func (s *MigrationStore) DumpSchema(ctx context.Context) ([]string, error) {
	var stmts []string
	err := s.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &stmts, `SELECT sql FROM sqlite_master WHERE sql IS NOT NULL`)
	})
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	return stmts, nil
}
