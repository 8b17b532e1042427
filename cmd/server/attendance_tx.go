package main

import (
	"context"
	"database/sql"
	"time"

	dErrors "timeclock/pkg/domain-errors"
	txcontext "timeclock/pkg/platform/tx"
)

const defaultAttendanceTxTimeout = 5 * time.Second

// attendancePostgresTx runs attendance mutations inside one database
// transaction. The *sql.Tx travels in the context; the stores pick it up and
// route their statements through it, so a state change and its audit row
// commit or roll back together.
type attendancePostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newAttendancePostgresTx(db *sql.DB) *attendancePostgresTx {
	return &attendancePostgresTx{db: db}
}

func (t *attendancePostgresTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultAttendanceTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	return nil
}
