package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/imryche/litequery/internal/core/domain"
	"github.com/imryche/litequery/internal/core/ports/driven"
)

// Ensure Database implements the interface.
var _ driven.Database = (*Database)(nil)

// ErrClosed is returned by a Database after Close.
var ErrClosed = errors.New("database is closed")

// Response is the scripted outcome of one statement.
type Response struct {
	Rows domain.RowSet
	Exec domain.ExecResult
	Err  error
}

// Call records one statement executed against the database.
type Call struct {
	SQL  string
	Args domain.Args
	InTx bool
}

// Database is an in-memory implementation of driven.Database. Statements
// are not interpreted; each SQL text returns the Response registered for it
// with On, or an empty result.
type Database struct {
	mu        sync.Mutex
	responses map[string]Response
	calls     []Call
	conns     int
	commits   int
	rollbacks int
	closed    bool
}

// NewDatabase creates a new in-memory database.
func NewDatabase() *Database {
	return &Database{
		responses: make(map[string]Response),
	}
}

// On registers the response returned for a statement text.
func (d *Database) On(sql string, resp Response) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.responses[sql] = resp
}

// Calls returns the statements executed so far in order.
func (d *Database) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Call, len(d.calls))
	copy(out, d.calls)
	return out
}

// Conns returns how many connections were opened.
func (d *Database) Conns() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns
}

// Commits returns how many transactions committed.
func (d *Database) Commits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.commits
}

// Rollbacks returns how many transactions rolled back.
func (d *Database) Rollbacks() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rollbacks
}

// Closed returns true once Close has been called.
func (d *Database) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

type scopeKey struct{ db *Database }

type scope struct {
	active bool
}

func (d *Database) scope(ctx context.Context) *scope {
	s, _ := ctx.Value(scopeKey{d}).(*scope)
	if s == nil || !s.active {
		return nil
	}
	return s
}

func (d *Database) open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.conns++
	return nil
}

// WithConn runs fn on the scope's connection, or on a new one.
func (d *Database) WithConn(ctx context.Context, fn func(ctx context.Context, exec driven.Executor) error) error {
	inTx := d.scope(ctx) != nil
	if !inTx {
		if err := d.open(); err != nil {
			return err
		}
	}
	return fn(ctx, &executor{db: d, inTx: inTx})
}

// WithTx runs fn in a transaction scope. Nested calls join the outer scope.
func (d *Database) WithTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if d.scope(ctx) != nil {
		return fn(ctx)
	}
	if err := d.open(); err != nil {
		return err
	}

	s := &scope{active: true}
	defer func() {
		s.active = false
		d.mu.Lock()
		defer d.mu.Unlock()
		if p := recover(); p != nil {
			d.rollbacks++
			panic(p)
		}
		if err != nil {
			d.rollbacks++
		} else {
			d.commits++
		}
	}()
	return fn(context.WithValue(ctx, scopeKey{d}, s))
}

// InTransaction returns true if ctx carries an active scope of this database.
func (d *Database) InTransaction(ctx context.Context) bool {
	return d.scope(ctx) != nil
}

// Close marks the database closed.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

type executor struct {
	db   *Database
	inTx bool
}

func (e *executor) respond(sql string, args domain.Args) Response {
	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	recorded := make(domain.Args, len(args))
	for k, v := range args {
		recorded[k] = v
	}
	e.db.calls = append(e.db.calls, Call{SQL: sql, Args: recorded, InTx: e.inTx})
	return e.db.responses[sql]
}

func (e *executor) Query(_ context.Context, sql string, args domain.Args) (domain.RowSet, error) {
	resp := e.respond(sql, args)
	if resp.Err != nil {
		return nil, resp.Err
	}
	return resp.Rows, nil
}

func (e *executor) QueryRow(_ context.Context, sql string, args domain.Args) (domain.Row, bool, error) {
	resp := e.respond(sql, args)
	if resp.Err != nil {
		return domain.Row{}, false, resp.Err
	}
	row, ok := resp.Rows.First()
	return row, ok, nil
}

func (e *executor) Exec(_ context.Context, sql string, args domain.Args) (domain.ExecResult, error) {
	resp := e.respond(sql, args)
	if resp.Err != nil {
		return domain.ExecResult{}, resp.Err
	}
	return resp.Exec, nil
}
