// Package userlock serializes work per user id inside one process.
package userlock

import (
	"context"
	"sync"
)

type entry struct {
	mu   sync.Mutex
	refs int
}

// Locker hands out one mutex per user id. A mutex lives only while someone
// holds or waits for it, so the set stays as small as the number of busy users.
type Locker struct {
	mu    sync.Mutex
	locks map[int64]*entry
}

// New creates an empty Locker
func New() *Locker {
	return &Locker{locks: make(map[int64]*entry)}
}

// Lock blocks until the user's lock is free and returns its release func.
// The release func may be called more than once.
func (l *Locker) Lock(userID int64) func() {
	l.mu.Lock()
	e, ok := l.locks[userID]
	if !ok {
		e = &entry{}
		l.locks[userID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()

			l.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(l.locks, userID)
			}
			l.mu.Unlock()
		})
	}
}

type heldKey struct {
	l *Locker
}

// Acquire is Lock that is reentrant along ctx: when ctx already carries the
// user's lock from this Locker, it returns ctx and a no-op release.
// Otherwise the returned ctx marks the lock as held for everything below it.
func (l *Locker) Acquire(ctx context.Context, userID int64) (context.Context, func()) {
	if l.Held(ctx, userID) {
		return ctx, func() {}
	}

	unlock := l.Lock(userID)

	held, _ := ctx.Value(heldKey{l}).([]int64)
	next := make([]int64, len(held), len(held)+1)
	copy(next, held)
	next = append(next, userID)
	return context.WithValue(ctx, heldKey{l}, next), unlock
}

// Held reports whether ctx carries the user's lock from this Locker
func (l *Locker) Held(ctx context.Context, userID int64) bool {
	held, _ := ctx.Value(heldKey{l}).([]int64)
	for _, id := range held {
		if id == userID {
			return true
		}
	}
	return false
}

// Len returns the number of users whose lock is held or awaited
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
