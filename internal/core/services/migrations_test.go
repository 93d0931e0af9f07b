package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imryche/litequery/internal/adapters/driven/storage/memory"
	"github.com/imryche/litequery/internal/core/domain"
)

func setupTestMigrations(t *testing.T) (*MigrationService, *memory.MigrationStore, domain.Config) {
	t.Helper()
	dir := t.TempDir()
	cfg := domain.Config{
		DatabasePath:   filepath.Join(dir, "db", "app.db"),
		QueriesPath:    filepath.Join(dir, "queries"),
		MigrationsPath: filepath.Join(dir, "migrations"),
	}
	require.NoError(t, cfg.EnsureDirectories())

	store := memory.NewMigrationStore()
	return NewMigrationService(store, cfg), store, cfg
}

func TestMigrationService_AppliesInNumericOrder(t *testing.T) {
	service, store, cfg := setupTestMigrations(t)
	writeFile(t, cfg.MigrationsPath, "010_c.sql", "create table c (id integer);")
	writeFile(t, cfg.MigrationsPath, "002_b.sql", "create table b (id integer);")
	writeFile(t, cfg.MigrationsPath, "001_a.sql", "create table a (id integer);")
	writeFile(t, cfg.MigrationsPath, "notes.txt", "not a migration")

	applied, err := service.Migrate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "002_b.sql", "010_c.sql"}, applied)

	ledger, err := store.Applied(context.Background())
	require.NoError(t, err)
	require.Len(t, ledger, 3)
	assert.Equal(t, "001_a.sql", ledger[0].Filename)
	assert.Equal(t, "010_c.sql", ledger[2].Filename)
}

func TestMigrationService_SecondRunIsNoop(t *testing.T) {
	service, store, cfg := setupTestMigrations(t)
	writeFile(t, cfg.MigrationsPath, "001_a.sql", "create table a (id integer);")
	ctx := context.Background()

	_, err := service.Migrate(ctx)
	require.NoError(t, err)
	require.NoError(t, os.Remove(cfg.SchemaPath()))

	applied, err := service.Migrate(ctx)

	require.NoError(t, err)
	assert.Empty(t, applied)
	ledger, _ := store.Applied(ctx)
	assert.Len(t, ledger, 1)
	assert.NoFileExists(t, cfg.SchemaPath(), "schema is only written when something was applied")
}

func TestMigrationService_EmptyDirectoryCreatesLedgerOnly(t *testing.T) {
	service, store, cfg := setupTestMigrations(t)

	applied, err := service.Migrate(context.Background())

	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.True(t, store.HasLedger())
	assert.NoFileExists(t, cfg.SchemaPath())
}

func TestMigrationService_StopsAtFailure(t *testing.T) {
	service, store, cfg := setupTestMigrations(t)
	writeFile(t, cfg.MigrationsPath, "001_a.sql", "create table a (id integer);")
	writeFile(t, cfg.MigrationsPath, "002_b.sql", "create table b (id integer); create tabel x;")
	writeFile(t, cfg.MigrationsPath, "003_c.sql", "create table c (id integer);")
	boom := errors.New(`near "tabel": syntax error`)
	store.FailOn("002_b.sql", boom)
	ctx := context.Background()

	applied, err := service.Migrate(ctx)

	require.ErrorIs(t, err, domain.ErrMigrationFailed)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "002_b.sql")
	assert.Equal(t, []string{"001_a.sql"}, applied)

	ledger, _ := store.Applied(ctx)
	require.Len(t, ledger, 1)
	assert.Equal(t, "001_a.sql", ledger[0].Filename)
	assert.NoFileExists(t, cfg.SchemaPath())
}

func TestMigrationService_WritesSchema(t *testing.T) {
	service, _, cfg := setupTestMigrations(t)
	writeFile(t, cfg.MigrationsPath, "001_a.sql", "create table a (id integer);\n")
	writeFile(t, cfg.MigrationsPath, "002_b.sql", "create table b (id integer);\n")

	_, err := service.Migrate(context.Background())
	require.NoError(t, err)

	schema, err := os.ReadFile(cfg.SchemaPath())
	require.NoError(t, err)
	assert.Equal(t, "create table a (id integer);\ncreate table b (id integer);\n", string(schema))
}

func TestMigrationService_MissingDirectory(t *testing.T) {
	service := NewMigrationService(memory.NewMigrationStore(), domain.Config{
		MigrationsPath: filepath.Join(t.TempDir(), "missing"),
	})

	_, err := service.Migrate(context.Background())

	assert.Error(t, err)
}

func TestMigrationService_Status(t *testing.T) {
	service, _, cfg := setupTestMigrations(t)
	writeFile(t, cfg.MigrationsPath, "001_a.sql", "create table a (id integer);")
	ctx := context.Background()
	_, err := service.Migrate(ctx)
	require.NoError(t, err)
	writeFile(t, cfg.MigrationsPath, "002_b.sql", "create table b (id integer);")

	status, err := service.Status(ctx)

	require.NoError(t, err)
	require.Len(t, status, 2)
	assert.Equal(t, "001_a.sql", status[0].Filename)
	assert.True(t, status[0].IsApplied())
	assert.Equal(t, "002_b.sql", status[1].Filename)
	assert.False(t, status[1].IsApplied())
}

func TestMigrationService_Create(t *testing.T) {
	service, _, cfg := setupTestMigrations(t)
	writeFile(t, cfg.MigrationsPath, "001_a.sql", "")
	writeFile(t, cfg.MigrationsPath, "007_b.sql", "")

	path, err := service.Create("Add users table")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.MigrationsPath, "008_add_users_table.sql"), path)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "-- Add users table\n", string(content))
}

func TestMigrationService_CreateInvalidName(t *testing.T) {
	service, _, _ := setupTestMigrations(t)

	_, err := service.Create("!!!")

	assert.ErrorIs(t, err, domain.ErrInvalidMigrationName)
}

func TestMigrationService_WatchAppliesNewFiles(t *testing.T) {
	service, store, cfg := setupTestMigrations(t)
	writeFile(t, cfg.MigrationsPath, "001_a.sql", "create table a (id integer);")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- service.Watch(ctx) }()

	require.Eventually(t, func() bool {
		ledger, err := store.Applied(context.Background())
		return err == nil && len(ledger) == 1
	}, 5*time.Second, 20*time.Millisecond)

	writeFile(t, cfg.MigrationsPath, "002_b.sql", "create table b (id integer);")

	require.Eventually(t, func() bool {
		ledger, _ := store.Applied(context.Background())
		return len(ledger) == 2
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestIsMigrationEvent(t *testing.T) {
	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"create sql", fsnotify.Event{Name: "/m/001_a.sql", Op: fsnotify.Create}, true},
		{"write sql", fsnotify.Event{Name: "/m/001_a.sql", Op: fsnotify.Write}, true},
		{"remove sql", fsnotify.Event{Name: "/m/001_a.sql", Op: fsnotify.Remove}, false},
		{"chmod sql", fsnotify.Event{Name: "/m/001_a.sql", Op: fsnotify.Chmod}, false},
		{"create other", fsnotify.Event{Name: "/m/notes.txt", Op: fsnotify.Create}, false},
		{"hidden swap", fsnotify.Event{Name: "/m/.001_a.sql", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isMigrationEvent(tt.ev))
		})
	}
}
