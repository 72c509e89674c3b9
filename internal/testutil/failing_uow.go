package testutil

import (
	"context"
	"database/sql"
	"strings"
	"sync/atomic"

	"github.com/alexanderramin/slaguard/internal/db"
)

// FailOnNthExecUoW injects Err on the FailOn-th write of a transaction. With
// Match set, only writes whose SQL contains Match are counted, so a test can
// target e.g. the action log insert of a dispatch. Reads pass through.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Match  string
	Err    error

	// Injected counts how many writes were failed across all transactions.
	Injected atomic.Int32
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return db.NewSQLiteUnitOfWork(u.DB).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &failOnNthExec{DBTX: tx, uow: u})
	})
}

type failOnNthExec struct {
	db.DBTX
	uow   *FailOnNthExecUoW
	count atomic.Int32
}

func (f *failOnNthExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.uow.Match == "" || strings.Contains(query, f.uow.Match) {
		if f.count.Add(1) == f.uow.FailOn {
			f.uow.Injected.Add(1)
			return nil, f.uow.Err
		}
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
