package app

import "sync"

// StudentLocks provides per-student mutual exclusion. Every multi-step
// mutation of a student's balance, points, entitlements or attempts runs
// under that student's lock; operations on different students proceed in
// parallel. All services touching money must share one instance.
//
// Entries are refcounted and dropped once the last holder releases, so the
// map stays proportional to in-flight students, not to every student ever
// seen.
type StudentLocks struct {
	mu    sync.Mutex
	locks map[string]*StudentLock
}

// StudentLock is a held per-student lock.
type StudentLock struct {
	parent *StudentLocks
	id     string
	mu     sync.Mutex
	refs   int
}

func NewStudentLocks() *StudentLocks {
	return &StudentLocks{locks: make(map[string]*StudentLock)}
}

// Lock acquires the mutex for studentID and returns it so callers can
// `defer locks.Lock(id).Unlock()`.
func (l *StudentLocks) Lock(studentID string) *StudentLock {
	l.mu.Lock()
	entry, ok := l.locks[studentID]
	if !ok {
		entry = &StudentLock{parent: l, id: studentID}
		l.locks[studentID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return entry
}

// Unlock releases the student's mutex and drops the map entry when no other
// goroutine is holding or waiting on it.
func (e *StudentLock) Unlock() {
	e.mu.Unlock()

	p := e.parent
	p.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(p.locks, e.id)
	}
	p.mu.Unlock()
}
