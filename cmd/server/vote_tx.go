package main

import (
	"context"
	"database/sql"
	"time"

	votingservice "ballotbox/internal/voting/service"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/tx"
)

// votePostgresTx serializes one user's casts across every server instance
// with a transaction-scoped advisory lock keyed by the user id. The UNIQUE
// constraint on votes.user_id remains the final guard.
type votePostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newVotePostgresTx(db *sql.DB) *votePostgresTx {
	return &votePostgresTx{db: db, timeout: votingservice.DefaultLedgerTxTimeout}
}

func (t *votePostgresTx) RunInTx(ctx context.Context, userID string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	return tx.Run(ctx, t.db, nil, func(ctx context.Context) error {
		exec := tx.Executor(ctx, t.db)
		if _, err := exec.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
			if ctx.Err() != nil {
				return dErrors.Wrap(err, dErrors.CodeTimeout, "timed out waiting for vote lock")
			}
			return err
		}
		return fn(ctx)
	})
}
