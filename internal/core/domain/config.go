package domain

import (
	"fmt"
	"os"
	"path/filepath"
)

// SchemaFilename is the schema dump written next to the database file.
const SchemaFilename = "schema.sql"

// Config holds the resolved paths the core works with.
type Config struct {
	// DatabasePath is the SQLite database file.
	DatabasePath string

	// QueriesPath is a query file or a directory of query files.
	QueriesPath string

	// MigrationsPath is the directory of migration scripts.
	MigrationsPath string
}

// SchemaPath returns the path of the schema dump, a sibling of the database.
func (c Config) SchemaPath() string {
	return filepath.Join(filepath.Dir(c.DatabasePath), SchemaFilename)
}

// EnsureDirectories creates the database parent directory and the
// queries and migrations directories if they are missing. A queries path
// that names an existing file is left alone.
func (c Config) EnsureDirectories() error {
	if err := os.MkdirAll(filepath.Dir(c.DatabasePath), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	if info, err := os.Stat(c.QueriesPath); err != nil || info.IsDir() {
		if err := os.MkdirAll(c.QueriesPath, 0o755); err != nil {
			return fmt.Errorf("creating queries directory: %w", err)
		}
	}
	if err := os.MkdirAll(c.MigrationsPath, 0o755); err != nil {
		return fmt.Errorf("creating migrations directory: %w", err)
	}
	return nil
}
