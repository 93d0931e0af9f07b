// Package services implements the driving port interfaces: the query file
// parser, the QueryEngine dispatcher and the MigrationService.
//
// Services talk to storage only through the driven ports, so they run
// against the SQLite adapter in production and the memory adapter in tests.
package services
