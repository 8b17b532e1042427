// Package lock provides per-user mutual exclusion for attendance mutations.
//
// The storage layer carries the hard guarantee (partial unique indexes on
// active rows); the locker serializes a user's concurrent requests before
// they reach the database so a duplicate clock-in resolves as a clean
// business error instead of a constraint violation surfacing from the driver.
package lock

import (
	"context"
	"sync"

	id "timeclock/pkg/domain"
)

// Locker acquires an exclusive lock scoped to one user. The returned release
// function must always be called, typically via defer.
type Locker interface {
	Acquire(ctx context.Context, userID id.UserID) (release func(), err error)
}

// Memory is a process-local Locker for single-node deployments and tests.
type Memory struct {
	mu    sync.Mutex
	locks map[id.UserID]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// NewMemory constructs a process-local locker.
func NewMemory() *Memory {
	return &Memory{locks: make(map[id.UserID]*userLock)}
}

// Acquire blocks until the lock for userID is held or ctx is done.
func (m *Memory) Acquire(ctx context.Context, userID id.UserID) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	ul, ok := m.locks[userID]
	if !ok {
		ul = &userLock{}
		m.locks[userID] = ul
	}
	ul.refs++
	m.mu.Unlock()

	ul.mu.Lock()

	released := false
	return func() {
		if released {
			return
		}
		released = true
		ul.mu.Unlock()

		m.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(m.locks, userID)
		}
		m.mu.Unlock()
	}, nil
}
