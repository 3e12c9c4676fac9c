package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bookhaven/bookhaven-server/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLocker(t *testing.T) *Locker {
	t.Helper()

	store, err := kv.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return New(store)
}

func TestAcquireRelease(t *testing.T) {
	locker := setupTestLocker(t)
	ctx := context.Background()
	key := BookBorrowKey("book-1")

	acquired, err := locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)

	// Held lock can't be taken again
	acquired, err = locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, acquired)

	require.NoError(t, locker.Release(ctx, key))

	// Released lock is free
	acquired, err = locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestAcquire_ExpiresOnTTL(t *testing.T) {
	locker := setupTestLocker(t)
	ctx := context.Background()
	key := BookBorrowKey("book-1")

	acquired, err := locker.Acquire(ctx, key, 50*time.Millisecond)
	require.NoError(t, err)
	require.True(t, acquired)

	time.Sleep(100 * time.Millisecond)

	acquired, err = locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired, "expired lock should be acquirable")
}

func TestAcquire_IndependentKeys(t *testing.T) {
	locker := setupTestLocker(t)
	ctx := context.Background()

	acquired, err := locker.Acquire(ctx, BookBorrowKey("book-1"), time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	acquired, err = locker.Acquire(ctx, BookBorrowKey("book-2"), time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired, "locks on different books must not interfere")
}

func TestAcquire_ConcurrentSingleWinner(t *testing.T) {
	locker := setupTestLocker(t)
	ctx := context.Background()
	key := BookBorrowKey("book-1")

	const attempts = 16
	var wg sync.WaitGroup
	wins := make(chan bool, attempts)

	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acquired, err := locker.Acquire(ctx, key, time.Minute)
			assert.NoError(t, err)
			wins <- acquired
		}()
	}
	wg.Wait()
	close(wins)

	winners := 0
	for won := range wins {
		if won {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one concurrent acquirer should win")
}

func TestRelease_CanceledContext(t *testing.T) {
	locker := setupTestLocker(t)
	key := BookBorrowKey("book-1")

	acquired, err := locker.Acquire(context.Background(), key, time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	// Releases run deferred; a caller that disconnected mid-operation
	// arrives here with a canceled context and must still free the lock.
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, locker.Release(canceled, key))

	acquired, err = locker.Acquire(context.Background(), key, time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired, "lock must be free after release with canceled context")
}

func TestRelease_Missing(t *testing.T) {
	locker := setupTestLocker(t)

	assert.NoError(t, locker.Release(context.Background(), BookBorrowKey("never-held")))
}

func TestBookBorrowKey(t *testing.T) {
	assert.Equal(t, "lock:book:book-42:borrow", BookBorrowKey("book-42"))
}
