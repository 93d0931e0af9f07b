package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/imryche/litequery/internal/core/domain"
	"github.com/imryche/litequery/internal/core/ports/driving"
)

// mockMigrator implements driving.Migrator for testing.
type mockMigrator struct {
	applied    []string
	migrateErr error
	status     []domain.Migration
	created    string
	watched    bool
}

func (m *mockMigrator) Migrate(_ context.Context) ([]string, error) {
	return m.applied, m.migrateErr
}

func (m *mockMigrator) Status(_ context.Context) ([]domain.Migration, error) {
	return m.status, nil
}

func (m *mockMigrator) Create(name string) (string, error) {
	m.created = name
	return "/db/migrations/003_" + name + ".sql", nil
}

func (m *mockMigrator) Watch(_ context.Context) error {
	m.watched = true
	return nil
}

// mockEngine implements driving.Engine for testing.
type mockEngine struct {
	queries []domain.Query
	result  domain.Result
	err     error

	calledName string
	calledArgs domain.Args
}

func (m *mockEngine) Call(_ context.Context, name string, args domain.Args) (domain.Result, error) {
	m.calledName = name
	m.calledArgs = args
	return m.result, m.err
}

func (m *mockEngine) Query(name string) (domain.Query, bool) {
	for _, q := range m.queries {
		if q.Name == name {
			return q, true
		}
	}
	return domain.Query{}, false
}

func (m *mockEngine) Queries() []domain.Query { return m.queries }

func (m *mockEngine) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *mockEngine) Close() error { return nil }

func setupCLITest(migrator *mockMigrator, eng *mockEngine) func() {
	oldServices := services
	services = &Services{
		Config: domain.Config{
			DatabasePath:   "/db/app.db",
			QueriesPath:    "/db/queries",
			MigrationsPath: "/db/migrations",
		},
		Migrator: migrator,
		Engine:   func() (driving.Engine, error) { return eng, nil },
	}
	return func() {
		services = oldServices
		migrateWatch = false
		queryJSON = false
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func mustRow(t *testing.T, cols []string, vals []any) domain.Row {
	t.Helper()
	row, err := domain.NewRow(cols, vals)
	if err != nil {
		t.Fatal(err)
	}
	return row
}
