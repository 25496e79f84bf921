package guard

import (
	"context"
	"sync"
	"time"

	errs "creda/internal/errors"

	"golang.org/x/sync/semaphore"
)

// DefaultLockWait bounds how long a caller blocks waiting for an
// account's lock before being rejected with ErrAccountBusy.
const DefaultLockWait = 5 * time.Second

type lockEntry struct {
	sem  *semaphore.Weighted
	refs int
}

// AccountLocker provides per-account mutual exclusion. Acquisition is
// side-effect-free until granted: a caller that times out waiting has
// mutated nothing. Entries are dropped once the last holder releases, so
// the map does not grow with the account space.
type AccountLocker struct {
	mu       sync.Mutex
	locks    map[string]*lockEntry
	waitTime time.Duration
}

// NewAccountLocker creates a locker with the given wait timeout;
// non-positive values fall back to DefaultLockWait.
func NewAccountLocker(waitTime time.Duration) *AccountLocker {
	if waitTime <= 0 {
		waitTime = DefaultLockWait
	}
	return &AccountLocker{
		locks:    make(map[string]*lockEntry),
		waitTime: waitTime,
	}
}

// Acquire blocks until the account's lock is granted, the wait timeout
// elapses (ErrAccountBusy), or ctx is done. The returned release function
// must be called on every exit path.
func (l *AccountLocker) Acquire(ctx context.Context, accountID string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[accountID]
	if !ok {
		entry = &lockEntry{sem: semaphore.NewWeighted(1)}
		l.locks[accountID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	waitCtx, cancel := context.WithTimeout(ctx, l.waitTime)
	defer cancel()

	if err := entry.sem.Acquire(waitCtx, 1); err != nil {
		l.release(accountID, entry, false)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errs.ErrAccountBusy
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.release(accountID, entry, true)
		})
	}
	return release, nil
}

func (l *AccountLocker) release(accountID string, entry *lockEntry, held bool) {
	if held {
		entry.sem.Release(1)
	}
	l.mu.Lock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, accountID)
	}
	l.mu.Unlock()
}
