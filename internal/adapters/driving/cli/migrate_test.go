package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imryche/litequery/internal/core/domain"
)

func TestMigrateCmd_Use(t *testing.T) {
	assert.Equal(t, "migrate", migrateCmd.Use)
	assert.NotNil(t, migrateCmd.Flags().Lookup("watch"))
}

func TestMigrateCmd_Applies(t *testing.T) {
	cleanup := setupCLITest(&mockMigrator{applied: []string{"001_init.sql", "002_users.sql"}}, nil)
	defer cleanup()

	out, err := execute(t, "migrate")

	require.NoError(t, err)
	assert.Contains(t, out, "Applying migrations:\n- 001_init.sql\n- 002_users.sql\n")
}

func TestMigrateCmd_NothingToApply(t *testing.T) {
	cleanup := setupCLITest(&mockMigrator{}, nil)
	defer cleanup()

	out, err := execute(t, "migrate")

	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to apply.")
}

func TestMigrateCmd_PartialFailure(t *testing.T) {
	failure := errors.New("migration failed: 002_users.sql: no such table")
	cleanup := setupCLITest(&mockMigrator{applied: []string{"001_init.sql"}, migrateErr: failure}, nil)
	defer cleanup()

	out, err := execute(t, "migrate")

	assert.ErrorIs(t, err, failure)
	assert.Contains(t, out, "- 001_init.sql")
	assert.NotContains(t, out, "Nothing to apply.")
}

func TestMigrateCmd_Watch(t *testing.T) {
	m := &mockMigrator{}
	cleanup := setupCLITest(m, nil)
	defer cleanup()

	out, err := execute(t, "migrate", "--watch")

	require.NoError(t, err)
	assert.True(t, m.watched)
	assert.Contains(t, out, "Watching /db/migrations")
}

func TestMigrateStatusCmd(t *testing.T) {
	m := &mockMigrator{status: []domain.Migration{
		{Filename: "001_init.sql", AppliedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{Filename: "002_users.sql"},
	}}
	cleanup := setupCLITest(m, nil)
	defer cleanup()

	out, err := execute(t, "migrate", "status")

	require.NoError(t, err)
	assert.Contains(t, out, "001_init.sql")
	assert.Contains(t, out, "2024-05-01 12:00:00")
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "1 applied, 1 pending")
}

func TestMigrateStatusCmd_Empty(t *testing.T) {
	cleanup := setupCLITest(&mockMigrator{}, nil)
	defer cleanup()

	out, err := execute(t, "migrate", "status")

	require.NoError(t, err)
	assert.Contains(t, out, "No migrations in /db/migrations")
}

func TestNewMigrationCmd(t *testing.T) {
	m := &mockMigrator{}
	cleanup := setupCLITest(m, nil)
	defer cleanup()

	out, err := execute(t, "new", "migration", "add", "users")

	require.NoError(t, err)
	assert.Equal(t, "add users", m.created)
	assert.Contains(t, out, "Created /db/migrations/003_add users.sql")
}

func TestNewMigrationCmd_RequiresName(t *testing.T) {
	cleanup := setupCLITest(&mockMigrator{}, nil)
	defer cleanup()

	_, err := execute(t, "new", "migration")
	assert.Error(t, err)
}
