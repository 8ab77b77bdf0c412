package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInMemoryStore(t *testing.T) (*InMemoryIdempotencyStore, *time.Time) {
	t.Helper()
	store := NewInMemoryIdempotencyStore(time.Hour)
	t.Cleanup(func() { _ = store.Close() })
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	return store, &now
}

func TestInMemoryIdempotencyStore_Lifecycle(t *testing.T) {
	store, _ := newTestInMemoryStore(t)
	ctx := context.Background()

	_, found, err := store.Lookup(ctx, "pay-1")
	require.NoError(t, err)
	assert.False(t, found)

	ok, err := store.Reserve(ctx, "pay-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, "pay-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "second reserve must lose")

	resp, found, err := store.Lookup(ctx, "pay-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Nil(t, resp, "in-flight key has no response yet")

	body := []byte(`{"success":true}`)
	require.NoError(t, store.Complete(ctx, "pay-1", body, time.Hour))
	body[0] = 'X'

	resp, found, err = store.Lookup(ctx, "pay-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"success":true}`, string(resp))
}

func TestInMemoryIdempotencyStore_ReleaseAllowsRetry(t *testing.T) {
	store, _ := newTestInMemoryStore(t)
	ctx := context.Background()

	ok, err := store.Reserve(ctx, "finalize-1", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.Release(ctx, "finalize-1"))

	ok, err = store.Reserve(ctx, "finalize-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInMemoryIdempotencyStore_Expiry(t *testing.T) {
	store, now := newTestInMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.Complete(ctx, "k", []byte("r"), time.Minute))
	*now = now.Add(time.Minute)

	_, found, err := store.Lookup(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	ok, err := store.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	*now = now.Add(2 * time.Minute)
	store.cleanup()
	assert.Equal(t, 0, store.Size())
}

func TestInMemoryIdempotencyStore_ConcurrentReserve(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()

	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Reserve(context.Background(), "same-key", time.Hour)
			if err == nil && ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore(10 * time.Millisecond)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
