package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "timeclock/pkg/domain"
)

func TestMemoryLocker_SerializesSameUser(t *testing.T) {
	locker := NewMemory()
	userID := id.NewUserID()
	ctx := context.Background()

	var inCritical int
	var maxInCritical int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(ctx, userID)
			require.NoError(t, err)
			defer release()

			mu.Lock()
			inCritical++
			if inCritical > maxInCritical {
				maxInCritical = inCritical
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inCritical--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInCritical, "at most one goroutine may hold a user's lock")
}

func TestMemoryLocker_DistinctUsersDoNotBlock(t *testing.T) {
	locker := NewMemory()
	ctx := context.Background()

	releaseA, err := locker.Acquire(ctx, id.NewUserID())
	require.NoError(t, err)
	defer releaseA()

	done := make(chan struct{})
	go func() {
		releaseB, err := locker.Acquire(ctx, id.NewUserID())
		assert.NoError(t, err)
		releaseB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second user's acquire blocked on first user's lock")
	}
}

func TestMemoryLocker_ReleaseIsIdempotent(t *testing.T) {
	locker := NewMemory()
	userID := id.NewUserID()

	release, err := locker.Acquire(context.Background(), userID)
	require.NoError(t, err)
	release()
	release() // second call must not panic or unlock someone else

	release2, err := locker.Acquire(context.Background(), userID)
	require.NoError(t, err)
	release2()
}

func TestMemoryLocker_RespectsCancelledContext(t *testing.T) {
	locker := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := locker.Acquire(ctx, id.NewUserID())
	assert.Error(t, err)
}
