package service

import (
	"context"
	"sync"
	"time"

	dErrors "ballotbox/pkg/domain-errors"
)

// LedgerTx runs fn as one exclusive unit for userID. Implementations wrap a
// database transaction or, in memory, a per-user lock.
type LedgerTx interface {
	RunInTx(ctx context.Context, userID string, fn func(ctx context.Context) error) error
}

// Operations are spread across shards by a hash of the user id so casts by
// different users rarely contend.
const numLedgerShards = 128

// DefaultLedgerTxTimeout bounds how long a cast may wait for its user's lock.
const DefaultLedgerTxTimeout = 5 * time.Second

type shardedLedgerTx struct {
	shards  [numLedgerShards]sync.Mutex
	timeout time.Duration
}

// NewShardedLedgerTx returns the in-memory LedgerTx.
func NewShardedLedgerTx(timeout time.Duration) LedgerTx {
	return &shardedLedgerTx{timeout: timeout}
}

func (t *shardedLedgerTx) RunInTx(ctx context.Context, userID string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = DefaultLedgerTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := shardFor(userID)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	// Re-check after waiting for the lock.
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}

func shardFor(userID string) int {
	return int(hashUserID(userID) % numLedgerShards)
}

// hashUserID is 32-bit FNV-1a.
func hashUserID(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
