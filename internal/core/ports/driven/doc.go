// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - Database: Connection and transaction scoping for query dispatch
//   - Executor: Statement execution on one acquired connection
//   - MigrationStore: Migration ledger, atomic apply and schema dump
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
