package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/imryche/litequery/internal/core/domain"
	"github.com/imryche/litequery/internal/core/ports/driven"
	"github.com/imryche/litequery/internal/logger"
)

// Pragmas are applied, in order, to every new connection.
var Pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA foreign_keys = ON",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA mmap_size = 134217728",
	"PRAGMA journal_size_limit = 67108864",
	"PRAGMA cache_size = 2000",
	"PRAGMA busy_timeout = 5000",
}

// Ensure DB implements the interface.
var _ driven.Database = (*DB)(nil)

// DB manages connections to one SQLite database file. Every operation
// outside a transaction runs on a fresh connection that is closed
// afterwards; a transaction keeps one connection for its whole scope.
type DB struct {
	db   *sqlx.DB
	path string
}

// Open prepares a handle for the database at path. No connection is made
// until the first operation.
func Open(path string) (*DB, error) {
	db, err := sqlx.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Released connections are closed instead of pooled.
	db.SetMaxIdleConns(0)

	return &DB{db: db, path: path}, nil
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

// Close closes the handle and any connection still open.
func (d *DB) Close() error {
	return d.db.Close()
}

// connect opens a new physical connection with the pragmas applied.
func (d *DB) connect(ctx context.Context) (*sqlx.Conn, error) {
	conn, err := d.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", d.path, err)
	}
	for _, pragma := range Pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}
	return conn, nil
}

// txScope is the transaction state carried in a context.
type txScope struct {
	tx     *sqlx.Tx
	active bool
}

// scopeKey keys a scope by the DB that owns it.
type scopeKey struct{ db *DB }

func (d *DB) scope(ctx context.Context) *txScope {
	s, _ := ctx.Value(scopeKey{d}).(*txScope)
	if s == nil || !s.active {
		return nil
	}
	return s
}

// InTransaction returns true if ctx carries an active scope of this DB.
func (d *DB) InTransaction(ctx context.Context) bool {
	return d.scope(ctx) != nil
}

// WithConn runs fn on the scope's transaction, or on a fresh connection
// that is closed when fn returns.
func (d *DB) WithConn(ctx context.Context, fn func(ctx context.Context, exec driven.Executor) error) error {
	if s := d.scope(ctx); s != nil {
		return fn(ctx, &executor{q: s.tx})
	}

	conn, err := d.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(ctx, &executor{q: conn})
}

// WithTx runs fn inside a transaction on one fresh connection. The
// transaction commits when fn returns nil and rolls back when fn fails or
// panics; fn's error is returned as is, joined with any rollback error.
// Calls with a context that already carries a scope run fn in that scope.
func (d *DB) WithTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if d.InTransaction(ctx) {
		return fn(ctx)
	}

	conn, err := d.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	logger.Debug("begin transaction")

	scope := &txScope{tx: tx, active: true}
	defer func() {
		scope.active = false
		if p := recover(); p != nil {
			_ = tx.Rollback()
			logger.Debug("rollback after panic")
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("rolling back: %w", rbErr))
			}
			logger.Debug("rollback")
			return
		}
		if err = tx.Commit(); err != nil {
			err = fmt.Errorf("committing transaction: %w", err)
			return
		}
		logger.Debug("commit")
	}()

	return fn(context.WithValue(ctx, scopeKey{d}, scope))
}

// queryer is satisfied by *sqlx.Conn and *sqlx.Tx.
type queryer interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

// executor implements driven.Executor on a connection or transaction.
type executor struct {
	q queryer
}

// bind converts named arguments to sql.NamedArg values in name order.
func bind(args domain.Args) []any {
	out := make([]any, 0, len(args))
	for _, name := range args.Names() {
		out = append(out, sql.Named(name, args[name]))
	}
	return out
}

func (e *executor) Query(ctx context.Context, query string, args domain.Args) (domain.RowSet, error) {
	return e.query(ctx, query, args, -1)
}

func (e *executor) QueryRow(ctx context.Context, query string, args domain.Args) (domain.Row, bool, error) {
	rows, err := e.query(ctx, query, args, 1)
	if err != nil {
		return domain.Row{}, false, err
	}
	row, ok := rows.First()
	return row, ok, nil
}

// query reads at most limit rows; a negative limit reads all of them.
func (e *executor) query(ctx context.Context, query string, args domain.Args, limit int) (domain.RowSet, error) {
	rows, err := e.q.QueryxContext(ctx, query, bind(args)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if err := domain.CheckColumns(columns); err != nil {
		return nil, err
	}

	set := domain.RowSet{}
	for (limit < 0 || len(set) < limit) && rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		row, err := domain.NewRow(columns, values)
		if err != nil {
			return nil, err
		}
		set = append(set, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

func (e *executor) Exec(ctx context.Context, query string, args domain.Args) (domain.ExecResult, error) {
	res, err := e.q.ExecContext(ctx, query, bind(args)...)
	if err != nil {
		return domain.ExecResult{}, err
	}
	var out domain.ExecResult
	if out.RowsAffected, err = res.RowsAffected(); err != nil {
		return out, fmt.Errorf("reading rows affected: %w", err)
	}
	if out.LastInsertID, err = res.LastInsertId(); err != nil {
		return out, fmt.Errorf("reading last insert id: %w", err)
	}
	return out, nil
}
