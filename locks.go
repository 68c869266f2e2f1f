package sheettable

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// LockRegistry hands out exclusive sections keyed by spreadsheet ID.
// Waiters for the same key are admitted in the order they arrived.
type LockRegistry interface {
	// Acquire blocks until the section for spreadsheetID is free or ctx is
	// done. The returned release func must be called exactly once.
	Acquire(ctx context.Context, spreadsheetID string) (release func(), err error)
}

// SpreadsheetLocks is a LockRegistry backed by one weighted semaphore per
// spreadsheet. Semaphores are created on first use and kept for the life of
// the registry.
type SpreadsheetLocks struct {
	mu    sync.Mutex
	locks map[string]*semaphore.Weighted
}

// NewLockRegistry creates an empty registry.
func NewLockRegistry() *SpreadsheetLocks {
	return &SpreadsheetLocks{
		locks: make(map[string]*semaphore.Weighted),
	}
}

var defaultLocks = NewLockRegistry()

// DefaultLocks returns the process-wide registry used by tables that are not
// given one explicitly.
func DefaultLocks() *SpreadsheetLocks {
	return defaultLocks
}

// Acquire implements LockRegistry.
func (l *SpreadsheetLocks) Acquire(ctx context.Context, spreadsheetID string) (func(), error) {
	sem := l.lockFor(spreadsheetID)
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() { sem.Release(1) })
	}, nil
}

// Len returns the number of spreadsheets that have been locked at least once.
func (l *SpreadsheetLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.locks)
}

func (l *SpreadsheetLocks) lockFor(spreadsheetID string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()

	sem, ok := l.locks[spreadsheetID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.locks[spreadsheetID] = sem
	}
	return sem
}
