package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationOrdinal(t *testing.T) {
	digits, ok := MigrationOrdinal("001_init.sql")
	assert.True(t, ok)
	assert.Equal(t, "001", digits)

	_, ok = MigrationOrdinal("init.sql")
	assert.False(t, ok)
}

func TestSortMigrationFilenames(t *testing.T) {
	in := []string{"readme.sql", "002_b.sql", "10_j.sql", "001_a.sql", "2_c.sql", "alpha.sql"}

	got := SortMigrationFilenames(in)

	assert.Equal(t, []string{"001_a.sql", "002_b.sql", "2_c.sql", "10_j.sql", "alpha.sql", "readme.sql"}, got)
	assert.Equal(t, "readme.sql", in[0], "input must not be reordered")
}

func TestCompareMigrations_HugeOrdinals(t *testing.T) {
	a := "99999999999999999999999_a.sql"
	b := "100000000000000000000000_b.sql"
	assert.Equal(t, -1, CompareMigrations(a, b))
	assert.Equal(t, 1, CompareMigrations(b, a))
}

func TestPendingMigrations(t *testing.T) {
	discovered := []string{"002_b.sql", "001_a.sql", "003_c.sql"}

	assert.Equal(t, []string{"002_b.sql", "003_c.sql"}, PendingMigrations(discovered, []string{"001_a.sql"}))
	assert.Empty(t, PendingMigrations(discovered, discovered))
}

func TestMigrationFilename(t *testing.T) {
	name, err := MigrationFilename("Add users table", nil)
	require.NoError(t, err)
	assert.Equal(t, "001_add_users_table.sql", name)

	name, err = MigrationFilename("add email!", []string{"001_a.sql", "007_b.sql", "notes.sql"})
	require.NoError(t, err)
	assert.Equal(t, "008_add_email.sql", name)

	_, err = MigrationFilename("!!!", nil)
	assert.True(t, errors.Is(err, ErrInvalidMigrationName))
}

func TestMigration_IsApplied(t *testing.T) {
	assert.False(t, Migration{Filename: "001_a.sql"}.IsApplied())
	assert.True(t, Migration{Filename: "001_a.sql", AppliedAt: time.Now()}.IsApplied())
}
