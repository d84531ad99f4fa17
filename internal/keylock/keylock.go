// Package keylock provides a table of per-key mutual-exclusion locks. At most
// one holder per key at a time; different keys never block each other.
package keylock

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

type entry struct {
	sem  *semaphore.Weighted
	refs int // holders plus waiters; the entry is dropped at zero.
}

// Table is a keyed lock table. The zero value is ready to use.
type Table struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New returns an empty lock table.
func New() *Table {
	return &Table{}
}

// Lock blocks until the lock for key is held or ctx is done. On success it
// returns a release function that must be called exactly once.
func (t *Table) Lock(ctx context.Context, key string) (func(), error) {
	e := t.acquireEntry(key)
	if err := e.sem.Acquire(ctx, 1); err != nil {
		t.releaseEntry(key, e)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			e.sem.Release(1)
			t.releaseEntry(key, e)
		})
	}, nil
}

// TryLock acquires the lock for key without blocking. It reports false if
// the key is already held.
func (t *Table) TryLock(key string) (func(), bool) {
	e := t.acquireEntry(key)
	if !e.sem.TryAcquire(1) {
		t.releaseEntry(key, e)
		return nil, false
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			e.sem.Release(1)
			t.releaseEntry(key, e)
		})
	}, true
}

// Len returns the number of keys currently held or waited on.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *Table) acquireEntry(key string) *entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.entries == nil {
		t.entries = make(map[string]*entry)
	}
	e, ok := t.entries[key]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		t.entries[key] = e
	}
	e.refs++
	return e
}

func (t *Table) releaseEntry(key string, e *entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(t.entries, key)
	}
}
