package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/imryche/litequery/internal/core/domain"
	"github.com/imryche/litequery/internal/core/ports/driven"
	"github.com/imryche/litequery/internal/core/ports/driving"
	"github.com/imryche/litequery/internal/logger"
)

// Ensure MigrationService implements the interface.
var _ driving.Migrator = (*MigrationService)(nil)

// watchDebounce groups editor save bursts into one run.
const watchDebounce = 200 * time.Millisecond

// MigrationService discovers migration scripts and applies the pending ones.
type MigrationService struct {
	store driven.MigrationStore
	cfg   domain.Config
}

// NewMigrationService creates a migration service for the configured paths.
func NewMigrationService(store driven.MigrationStore, cfg domain.Config) *MigrationService {
	return &MigrationService{store: store, cfg: cfg}
}

// discover returns the migration filenames in apply order.
func (s *MigrationService) discover() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.MigrationsPath)
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), domain.MigrationExt) {
			names = append(names, entry.Name())
		}
	}
	return domain.SortMigrationFilenames(names), nil
}

func (s *MigrationService) ledger(ctx context.Context) (map[string]domain.LedgerEntry, error) {
	if err := s.store.EnsureLedger(ctx); err != nil {
		return nil, fmt.Errorf("creating migrations ledger: %w", err)
	}
	entries, err := s.store.Applied(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading migrations ledger: %w", err)
	}
	applied := make(map[string]domain.LedgerEntry, len(entries))
	for _, e := range entries {
		applied[e.Filename] = e
	}
	return applied, nil
}

// Migrate applies every pending migration in order, each in its own
// transaction, and returns the applied filenames. The run stops at the first
// failure; earlier files stay applied. After at least one file was applied
// the schema file is rewritten.
func (s *MigrationService) Migrate(ctx context.Context) ([]string, error) {
	discovered, err := s.discover()
	if err != nil {
		return nil, err
	}
	ledger, err := s.ledger(ctx)
	if err != nil {
		return nil, err
	}

	done := make([]string, 0, len(ledger))
	for name := range ledger {
		done = append(done, name)
	}
	pending := domain.PendingMigrations(discovered, done)
	if len(pending) == 0 {
		logger.Info("Nothing to apply.")
		return nil, nil
	}

	logger.Info("Applying migrations:")
	var applied []string
	for _, name := range pending {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		content, err := os.ReadFile(filepath.Join(s.cfg.MigrationsPath, name))
		if err != nil {
			return applied, fmt.Errorf("%w: %s: %w", domain.ErrMigrationFailed, name, err)
		}
		if err := s.store.Apply(ctx, domain.Migration{Filename: name, SQL: string(content)}); err != nil {
			return applied, fmt.Errorf("%w: %s: %w", domain.ErrMigrationFailed, name, err)
		}
		logger.Info("- %s", name)
		applied = append(applied, name)
	}

	if err := s.writeSchema(ctx); err != nil {
		return applied, err
	}
	return applied, nil
}

// writeSchema rewrites schema.sql next to the database.
func (s *MigrationService) writeSchema(ctx context.Context) error {
	stmts, err := s.store.DumpSchema(ctx)
	if err != nil {
		return fmt.Errorf("dumping schema: %w", err)
	}
	var b strings.Builder
	for _, stmt := range stmts {
		b.WriteString(stmt)
		b.WriteString(";\n")
	}
	path := s.cfg.SchemaPath()
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing schema: %w", err)
	}
	logger.Debug("wrote %d schema statements to %s", len(stmts), path)
	return nil
}

// Status returns every discovered migration in apply order. Applied ones
// carry the time the ledger recorded them.
func (s *MigrationService) Status(ctx context.Context) ([]domain.Migration, error) {
	discovered, err := s.discover()
	if err != nil {
		return nil, err
	}
	ledger, err := s.ledger(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Migration, 0, len(discovered))
	for _, name := range discovered {
		m := domain.Migration{Filename: name}
		if e, ok := ledger[name]; ok {
			m.AppliedAt = e.RunAt
		}
		out = append(out, m)
	}
	return out, nil
}

// Create writes an empty migration numbered after the existing ones and
// returns its path.
func (s *MigrationService) Create(name string) (string, error) {
	existing, err := s.discover()
	if err != nil {
		return "", err
	}
	filename, err := domain.MigrationFilename(name, existing)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.cfg.MigrationsPath, filename)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating migration: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "-- %s\n", strings.TrimSpace(name)); err != nil {
		return "", fmt.Errorf("writing migration: %w", err)
	}
	return path, nil
}

// Watch runs Migrate once, then again whenever a migration script is
// created or written, until ctx is cancelled. Failed runs are logged and
// watching continues.
func (s *MigrationService) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.cfg.MigrationsPath); err != nil {
		return fmt.Errorf("watching %s: %w", s.cfg.MigrationsPath, err)
	}

	s.runWatched(ctx)

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if isMigrationEvent(ev) {
				logger.Debug("migration change: %s", ev)
				timer.Reset(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		case <-timer.C:
			s.runWatched(ctx)
		}
	}
}

func (s *MigrationService) runWatched(ctx context.Context) {
	applied, err := s.Migrate(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("%v", err)
	}
	for _, name := range applied {
		logger.Debug("applied %s", name)
	}
}

// isMigrationEvent returns true for creates and writes of visible *.sql files.
func isMigrationEvent(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(ev.Name)
	return !strings.HasPrefix(base, ".") && strings.HasSuffix(base, domain.MigrationExt)
}
