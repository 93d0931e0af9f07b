// Package domain defines the core types for litequery.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Query: A named SQL statement with its operation kind and parameters
//   - Op: The execution and result shape of a query
//   - Row / RowSet: Immutable, coerced query results with projection
//   - Migration: A schema migration script and its ledger state
//   - Config: Resolved database, queries and migrations paths
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
