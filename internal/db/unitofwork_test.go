package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alexanderramin/slaguard/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const insertTech = `INSERT INTO technicians (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`

func openTestUoW(t *testing.T) (*db.SQLiteUnitOfWork, func(id string) bool) {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	exists := func(id string) bool {
		var n int
		require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM technicians WHERE id = ?`, id).Scan(&n))
		return n == 1
	}
	return db.NewSQLiteUnitOfWork(database), exists
}

func insert(ctx context.Context, tx db.DBTX, id string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := tx.ExecContext(ctx, insertTech, id, "tech "+id, now, now)
	return err
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	uow, exists := openTestUoW(t)
	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insert(ctx, tx, "t1"); err != nil {
			return err
		}
		return insert(ctx, tx, "t2")
	})
	require.NoError(t, err)
	assert.True(t, exists("t1"))
	assert.True(t, exists("t2"))
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	uow, exists := openTestUoW(t)
	boom := errors.New("capacity check failed")
	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		require.NoError(t, insert(ctx, tx, "t1"))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, exists("t1"))
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	uow, exists := openTestUoW(t)
	assert.PanicsWithValue(t, "dispatch panic", func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			require.NoError(t, insert(ctx, tx, "t1"))
			panic("dispatch panic")
		})
	})
	assert.False(t, exists("t1"))
}

func TestWithinTx_RetriesBusyBegin(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin().WillReturnError(errors.New("database is locked (5) (SQLITE_BUSY)"))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO technicians").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = db.NewSQLiteUnitOfWork(conn).WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return insert(ctx, tx, "t1")
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_GivesUpAfterBeginAttempts(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	for i := 0; i < db.BeginAttempts; i++ {
		mock.ExpectBegin().WillReturnError(errors.New("database is locked"))
	}
	called := false
	err = db.NewSQLiteUnitOfWork(conn).WithinTx(context.Background(), func(context.Context, db.DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.True(t, db.IsBusy(err))
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_OtherBeginErrorsAreNotRetried(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin().WillReturnError(errors.New("disk I/O error"))
	err = db.NewSQLiteUnitOfWork(conn).WithinTx(context.Background(), func(context.Context, db.DBTX) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "beginning transaction: disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsBusy(t *testing.T) {
	assert.False(t, db.IsBusy(nil))
	assert.False(t, db.IsBusy(errors.New("UNIQUE constraint failed")))
	assert.True(t, db.IsBusy(errors.New("SQLITE_BUSY: database is locked")))
}
