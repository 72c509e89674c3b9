package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx, so one repository type serves
// both plain reads and writes inside a unit of work.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

// UnitOfWork runs fn in one transaction. Violation recording, dispatch
// bookkeeping and assignment read-check-write all go through it.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

const (
	// BeginAttempts bounds how often WithinTx retries a busy BEGIN.
	BeginAttempts = 3
	beginBackoff  = 25 * time.Millisecond
)

type SQLiteUnitOfWork struct {
	db *sql.DB
}

func NewSQLiteUnitOfWork(db *sql.DB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{db: db}
}

// WithinTx commits when fn returns nil and rolls back on error or panic.
// File databases open write transactions with BEGIN IMMEDIATE, so a
// concurrent writer shows up as a busy BEGIN, which is retried with a short
// linear backoff before giving up.
func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := u.begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (u *SQLiteUnitOfWork) begin(ctx context.Context) (*sql.Tx, error) {
	var err error
	for attempt := 1; ; attempt++ {
		var tx *sql.Tx
		if tx, err = u.db.BeginTx(ctx, nil); err == nil {
			return tx, nil
		}
		if !IsBusy(err) || attempt == BeginAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("beginning transaction: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * beginBackoff):
		}
	}
	return nil, fmt.Errorf("beginning transaction: %w", err)
}

// IsBusy reports whether err is SQLite refusing a lock another connection
// holds.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}
