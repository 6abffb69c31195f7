package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/alexanderramin/discipulado/internal/db"
)

// FailOnNthExecUoW is a UnitOfWork that injects Err on the Nth write of a
// transaction, so tests can prove multi-write operations roll back as one.
//
// Writes are counted from 1. When Match is set only writes whose SQL
// contains Match are counted. Reads always pass through.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Match  string
	Err    error

	// Calls counts how many transactions were opened.
	Calls atomic.Int32
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	u.Calls.Add(1)
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	wrapped := &failOnNthExec{DBTX: tx, failOn: u.FailOn, match: u.Match, err: u.Err}
	if fnErr := fn(ctx, wrapped); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

type failOnNthExec struct {
	db.DBTX
	count  atomic.Int32
	failOn int32
	match  string
	err    error
}

func (f *failOnNthExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.match == "" || strings.Contains(query, f.match) {
		if f.count.Add(1) == f.failOn {
			return nil, f.err
		}
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
