package main

import (
	"context"
	"database/sql"
	"time"

	dErrors "github.com/dr-roshyara/public-digit-sub005/pkg/domain-errors"
	txcontext "github.com/dr-roshyara/public-digit-sub005/pkg/platform/tx"
)

const defaultMemberTxTimeout = 5 * time.Second

// memberPostgresTx runs a member write and its outbox append in one database
// transaction. Stores pick the transaction up from the context.
type memberPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newMemberPostgresTx(db *sql.DB) *memberPostgresTx {
	return &memberPostgresTx{db: db}
}

func (t *memberPostgresTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultMemberTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "membership store unavailable")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "commit membership transaction")
	}
	return nil
}
