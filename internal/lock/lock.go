// Package lock provides non-blocking TTL locks on top of the key-value store.
//
// A lock is a key that exists. Acquire attempts to create it with a TTL and
// reports whether it won; Release deletes it. The TTL bounds how long a
// crashed holder can keep everyone else out.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/bookhaven/bookhaven-server/internal/kv"
)

const lockValue = "1"

// BookBorrowKey returns the lock key guarding borrow and return of a book.
// Borrow and return share the key so the two transitions serialize
// against each other, not just against themselves.
func BookBorrowKey(bookID string) string {
	return fmt.Sprintf("lock:book:%s:borrow", bookID)
}

// Locker grants and releases TTL locks.
type Locker struct {
	kv *kv.Store
}

// New creates a Locker over the given key-value store.
func New(store *kv.Store) *Locker {
	return &Locker{kv: store}
}

// Acquire attempts to take the lock named key for at most ttl.
// It never blocks: the return value says whether this caller won.
// Losing is not an error.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	acquired, err := l.kv.SetIfAbsent(key, []byte(lockValue), ttl)
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	return acquired, nil
}

// Release drops the lock named key. It deliberately ignores context
// cancellation: releases run deferred, and a caller that disconnected
// mid-operation must still free the lock rather than hold it until the
// TTL. Releasing a lock that already expired is a no-op; the caller
// can't tell and doesn't need to.
func (l *Locker) Release(_ context.Context, key string) error {
	if err := l.kv.Delete(key); err != nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}
