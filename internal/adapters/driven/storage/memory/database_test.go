package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imryche/litequery/internal/core/domain"
	"github.com/imryche/litequery/internal/core/ports/driven"
)

func TestDatabase_WithConnOpensConnection(t *testing.T) {
	db := NewDatabase()
	row, err := domain.NewRow([]string{"n"}, []any{int64(1)})
	require.NoError(t, err)
	db.On("select 1 as n;", Response{Rows: domain.RowSet{row}})

	var got domain.Row
	var found bool
	err = db.WithConn(context.Background(), func(ctx context.Context, exec driven.Executor) error {
		var err error
		got, found, err = exec.QueryRow(ctx, "select 1 as n;", nil)
		return err
	})

	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, got.Equal(row))
	assert.Equal(t, 1, db.Conns())
	require.Len(t, db.Calls(), 1)
	assert.False(t, db.Calls()[0].InTx)
}

func TestDatabase_UnscriptedStatementIsEmpty(t *testing.T) {
	db := NewDatabase()

	err := db.WithConn(context.Background(), func(ctx context.Context, exec driven.Executor) error {
		rows, err := exec.Query(ctx, "select * from users;", nil)
		assert.Empty(t, rows)
		return err
	})

	require.NoError(t, err)
}

func TestDatabase_WithTxCommits(t *testing.T) {
	db := NewDatabase()
	ctx := context.Background()

	err := db.WithTx(ctx, func(ctx context.Context) error {
		assert.True(t, db.InTransaction(ctx))
		return db.WithConn(ctx, func(ctx context.Context, exec driven.Executor) error {
			_, err := exec.Exec(ctx, "delete from users;", nil)
			return err
		})
	})

	require.NoError(t, err)
	assert.Equal(t, 1, db.Commits())
	assert.Equal(t, 0, db.Rollbacks())
	assert.Equal(t, 1, db.Conns())
	assert.True(t, db.Calls()[0].InTx)
	assert.False(t, db.InTransaction(ctx))
}

func TestDatabase_WithTxRollsBackOnError(t *testing.T) {
	db := NewDatabase()
	boom := errors.New("boom")

	err := db.WithTx(context.Background(), func(context.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, db.Commits())
	assert.Equal(t, 1, db.Rollbacks())
}

func TestDatabase_WithTxRollsBackOnPanic(t *testing.T) {
	db := NewDatabase()

	assert.PanicsWithValue(t, "boom", func() {
		_ = db.WithTx(context.Background(), func(context.Context) error {
			panic("boom")
		})
	})
	assert.Equal(t, 1, db.Rollbacks())
}

func TestDatabase_NestedWithTxJoinsScope(t *testing.T) {
	db := NewDatabase()

	err := db.WithTx(context.Background(), func(ctx context.Context) error {
		return db.WithTx(ctx, func(ctx context.Context) error {
			assert.True(t, db.InTransaction(ctx))
			return nil
		})
	})

	require.NoError(t, err)
	assert.Equal(t, 1, db.Commits())
	assert.Equal(t, 1, db.Conns())
}

func TestDatabase_ScopeInactiveAfterExit(t *testing.T) {
	db := NewDatabase()
	var leaked context.Context

	require.NoError(t, db.WithTx(context.Background(), func(ctx context.Context) error {
		leaked = ctx
		return nil
	}))

	assert.False(t, db.InTransaction(leaked))
}

func TestDatabase_Close(t *testing.T) {
	db := NewDatabase()
	require.NoError(t, db.Close())

	err := db.WithConn(context.Background(), func(context.Context, driven.Executor) error { return nil })

	assert.ErrorIs(t, err, ErrClosed)
	assert.True(t, db.Closed())
}
