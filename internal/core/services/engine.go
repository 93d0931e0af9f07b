package services

import (
	"context"
	"fmt"
	"time"

	"github.com/imryche/litequery/internal/core/domain"
	"github.com/imryche/litequery/internal/core/ports/driven"
	"github.com/imryche/litequery/internal/core/ports/driving"
	"github.com/imryche/litequery/internal/logger"
)

// Ensure QueryEngine implements the interface.
var _ driving.Engine = (*QueryEngine)(nil)

// operation executes one query shape on an acquired connection.
type operation func(ctx context.Context, exec driven.Executor, sql string, args domain.Args) (domain.Result, error)

// entry is one row of the dispatch table.
type entry struct {
	query domain.Query
	run   operation
}

// QueryEngine dispatches parsed queries by name. The dispatch table is built
// once at construction and never changes afterwards.
type QueryEngine struct {
	db      driven.Database
	queries []domain.Query
	table   map[string]entry
}

// NewQueryEngine validates queries and builds the dispatch table over db.
func NewQueryEngine(db driven.Database, queries []domain.Query) (*QueryEngine, error) {
	if err := domain.ValidateQueries(queries); err != nil {
		return nil, err
	}

	table := make(map[string]entry, len(queries))
	for _, q := range queries {
		run, err := operationFor(q.Op)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", q.Name, err)
		}
		table[q.Name] = entry{query: q, run: run}
	}

	list := make([]domain.Query, len(queries))
	copy(list, queries)

	return &QueryEngine{db: db, queries: list, table: table}, nil
}

func operationFor(op domain.Op) (operation, error) {
	switch op {
	case domain.OpFetchAll:
		return fetchAll, nil
	case domain.OpFetchOne:
		return fetchOne, nil
	case domain.OpFetchScalar:
		return fetchScalar, nil
	case domain.OpMutate:
		return mutate, nil
	case domain.OpMutateReturningID:
		return mutateReturningID, nil
	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}
}

func fetchAll(ctx context.Context, exec driven.Executor, sql string, args domain.Args) (domain.Result, error) {
	rows, err := exec.Query(ctx, sql, args)
	if err != nil {
		return domain.Result{}, err
	}
	if rows == nil {
		rows = domain.RowSet{}
	}
	return domain.Result{Op: domain.OpFetchAll, Rows: rows}, nil
}

func fetchOne(ctx context.Context, exec driven.Executor, sql string, args domain.Args) (domain.Result, error) {
	row, ok, err := exec.QueryRow(ctx, sql, args)
	if err != nil {
		return domain.Result{}, err
	}
	if !ok {
		return domain.Result{Op: domain.OpFetchOne}, domain.ErrNoRows
	}
	return domain.Result{Op: domain.OpFetchOne, Row: row}, nil
}

func fetchScalar(ctx context.Context, exec driven.Executor, sql string, args domain.Args) (domain.Result, error) {
	row, ok, err := exec.QueryRow(ctx, sql, args)
	if err != nil {
		return domain.Result{}, err
	}
	if !ok || row.IsEmpty() {
		return domain.Result{Op: domain.OpFetchScalar}, domain.ErrNoRows
	}
	value, _ := row.At(0)
	return domain.Result{Op: domain.OpFetchScalar, Value: value}, nil
}

func mutate(ctx context.Context, exec driven.Executor, sql string, args domain.Args) (domain.Result, error) {
	res, err := exec.Exec(ctx, sql, args)
	if err != nil {
		return domain.Result{}, err
	}
	return domain.Result{Op: domain.OpMutate, RowsAffected: res.RowsAffected}, nil
}

func mutateReturningID(ctx context.Context, exec driven.Executor, sql string, args domain.Args) (domain.Result, error) {
	res, err := exec.Exec(ctx, sql, args)
	if err != nil {
		return domain.Result{}, err
	}
	return domain.Result{Op: domain.OpMutateReturningID, LastInsertID: res.LastInsertID}, nil
}

// execute keeps both counters; it backs RawExec.
func execute(ctx context.Context, exec driven.Executor, sql string, args domain.Args) (domain.Result, error) {
	res, err := exec.Exec(ctx, sql, args)
	if err != nil {
		return domain.Result{}, err
	}
	return domain.Result{Op: domain.OpMutate, RowsAffected: res.RowsAffected, LastInsertID: res.LastInsertID}, nil
}

// Call runs the named query. args must supply exactly the parameters the
// query declares. FetchOne and FetchScalar queries that match no row return
// domain.ErrNoRows.
func (e *QueryEngine) Call(ctx context.Context, name string, args domain.Args) (domain.Result, error) {
	ent, ok := e.table[name]
	if !ok {
		return domain.Result{}, fmt.Errorf("%w: %q", domain.ErrUnknownQuery, name)
	}
	return e.run(ctx, ent.query, ent.run, args)
}

func (e *QueryEngine) run(ctx context.Context, q domain.Query, run operation, args domain.Args) (domain.Result, error) {
	if err := domain.CheckArgs(q, args); err != nil {
		return domain.Result{}, err
	}
	bound := bindArgs(args)

	defer logger.Timed("query " + q.Header())()

	var result domain.Result
	err := e.db.WithConn(ctx, func(ctx context.Context, exec driven.Executor) error {
		var err error
		result, err = run(ctx, exec, q.SQL, bound)
		return err
	})
	if err != nil {
		return result, fmt.Errorf("%s: %w", q.Name, err)
	}
	return result, nil
}

// bindArgs returns a copy of args with temporal values in UTC text form so
// they are stored without an offset.
func bindArgs(args domain.Args) domain.Args {
	bound := make(domain.Args, len(args))
	for k, v := range args {
		switch tv := v.(type) {
		case time.Time:
			bound[k] = domain.FormatTimestamp(tv)
		case *time.Time:
			if tv == nil {
				bound[k] = nil
			} else {
				bound[k] = domain.FormatTimestamp(*tv)
			}
		default:
			bound[k] = v
		}
	}
	return bound
}

func (e *QueryEngine) typed(ctx context.Context, name string, op domain.Op, args domain.Args) (domain.Result, error) {
	ent, ok := e.table[name]
	if !ok {
		return domain.Result{}, fmt.Errorf("%w: %q", domain.ErrUnknownQuery, name)
	}
	if ent.query.Op != op {
		return domain.Result{}, fmt.Errorf("%w: %s returns %s, not %s",
			domain.ErrOpMismatch, ent.query.Header(), ent.query.Op.Description(), op.Description())
	}
	return e.run(ctx, ent.query, ent.run, args)
}

// FetchAll runs a query without a suffix and returns every row.
func (e *QueryEngine) FetchAll(ctx context.Context, name string, args domain.Args) (domain.RowSet, error) {
	res, err := e.typed(ctx, name, domain.OpFetchAll, args)
	return res.Rows, err
}

// FetchOne runs a "^" query and returns its first row.
func (e *QueryEngine) FetchOne(ctx context.Context, name string, args domain.Args) (domain.Row, error) {
	res, err := e.typed(ctx, name, domain.OpFetchOne, args)
	return res.Row, err
}

// FetchScalar runs a "$" query and returns the first column of its first row.
func (e *QueryEngine) FetchScalar(ctx context.Context, name string, args domain.Args) (any, error) {
	res, err := e.typed(ctx, name, domain.OpFetchScalar, args)
	return res.Value, err
}

// Mutate runs a "!" query and returns the number of affected rows.
func (e *QueryEngine) Mutate(ctx context.Context, name string, args domain.Args) (int64, error) {
	res, err := e.typed(ctx, name, domain.OpMutate, args)
	return res.RowsAffected, err
}

// MutateReturningID runs a "<!" query and returns the last inserted row id.
func (e *QueryEngine) MutateReturningID(ctx context.Context, name string, args domain.Args) (int64, error) {
	res, err := e.typed(ctx, name, domain.OpMutateReturningID, args)
	return res.LastInsertID, err
}

func rawQuery(name, sql string) domain.Query {
	return domain.Query{Name: name, SQL: sql, Args: domain.ExtractParams(sql)}
}

// Raw runs ad-hoc SQL and returns every row.
func (e *QueryEngine) Raw(ctx context.Context, sql string, args domain.Args) (domain.RowSet, error) {
	res, err := e.run(ctx, rawQuery("raw", sql), fetchAll, args)
	return res.Rows, err
}

// RawOne runs ad-hoc SQL and returns the first row.
func (e *QueryEngine) RawOne(ctx context.Context, sql string, args domain.Args) (domain.Row, error) {
	res, err := e.run(ctx, rawQuery("raw_one", sql), fetchOne, args)
	return res.Row, err
}

// RawValue runs ad-hoc SQL and returns the first column of the first row.
func (e *QueryEngine) RawValue(ctx context.Context, sql string, args domain.Args) (any, error) {
	res, err := e.run(ctx, rawQuery("raw_value", sql), fetchScalar, args)
	return res.Value, err
}

// RawExec runs ad-hoc SQL that returns no rows.
func (e *QueryEngine) RawExec(ctx context.Context, sql string, args domain.Args) (domain.ExecResult, error) {
	res, err := e.run(ctx, rawQuery("raw_exec", sql), execute, args)
	if err != nil {
		return domain.ExecResult{}, err
	}
	return domain.ExecResult{RowsAffected: res.RowsAffected, LastInsertID: res.LastInsertID}, nil
}

// Transaction runs fn in one transaction scope. Calls made with the context
// passed to fn share the scope; nested Transaction calls join it.
func (e *QueryEngine) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return e.db.WithTx(ctx, fn)
}

// InTransaction returns true if ctx carries an active transaction scope.
func (e *QueryEngine) InTransaction(ctx context.Context) bool {
	return e.db.InTransaction(ctx)
}

// Query returns the parsed query registered under name.
func (e *QueryEngine) Query(name string) (domain.Query, bool) {
	ent, ok := e.table[name]
	return ent.query, ok
}

// Queries returns every registered query in parse order.
func (e *QueryEngine) Queries() []domain.Query {
	out := make([]domain.Query, len(e.queries))
	copy(out, e.queries)
	return out
}

// Close releases the underlying database.
func (e *QueryEngine) Close() error {
	return e.db.Close()
}
