package domain

import "errors"

// Domain errors represent query compilation and dispatch failures.
// Driver errors are never mapped onto these; they propagate unchanged.
var (
	// Parse errors. All of them fail before any query becomes callable.

	// ErrInvalidName indicates a query header with a bad identifier or suffix.
	ErrInvalidName = errors.New("invalid query name")

	// ErrDuplicateName indicates two queries share the same base name.
	ErrDuplicateName = errors.New("duplicate query name")

	// ErrReservedName indicates a query name collides with an engine method.
	ErrReservedName = errors.New("reserved query name")

	// ErrInvalidSource indicates the queries path is neither a file nor a directory.
	ErrInvalidSource = errors.New("invalid query source")

	// ErrUnterminatedQuery indicates a query block without a terminating semicolon.
	ErrUnterminatedQuery = errors.New("unterminated query")

	// Dispatch errors.

	// ErrUnknownQuery indicates a call to a query name that was never parsed.
	ErrUnknownQuery = errors.New("unknown query")

	// ErrOpMismatch indicates a typed entry point was used for a query of another kind.
	ErrOpMismatch = errors.New("operation mismatch")

	// ErrMissingArgument indicates a declared parameter was not supplied.
	ErrMissingArgument = errors.New("missing argument")

	// ErrUnexpectedArgument indicates an argument that the query does not declare.
	ErrUnexpectedArgument = errors.New("unexpected argument")

	// ErrNoRows indicates a fetch-one or fetch-scalar query matched no row.
	ErrNoRows = errors.New("no rows in result set")

	// Result shaping errors.

	// ErrAmbiguousColumn indicates duplicate column names in one result row.
	ErrAmbiguousColumn = errors.New("ambiguous column")

	// ErrIndexOutOfRange indicates positional access past the last column.
	ErrIndexOutOfRange = errors.New("column index out of range")

	// ErrUnknownColumn indicates access by a column name the row does not have.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrUnknownField indicates a column with no matching field in a projection target.
	ErrUnknownField = errors.New("no field for column")

	// ErrInvalidTarget indicates a projection target of an unsupported type.
	ErrInvalidTarget = errors.New("invalid projection target")

	// Migration errors.

	// ErrMigrationFailed indicates a migration file could not be applied.
	// The failing file's transaction has been rolled back.
	ErrMigrationFailed = errors.New("migration failed")

	// ErrInvalidMigrationName indicates a migration name that produces an empty filename.
	ErrInvalidMigrationName = errors.New("invalid migration name")
)
