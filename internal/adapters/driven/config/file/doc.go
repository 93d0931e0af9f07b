// Package file resolves litequery configuration from the local filesystem.
//
// Sources, highest priority first:
//   - the --database flag
//   - litequery.toml in the working directory (or the --config path)
//   - the DATABASE_PATH environment variable
//
// Queries and migrations directories not named in the config file are
// discovered by walking up from the database directory to the working
// directory, and default to siblings of the database file.
package file
