package core

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Listeners is a copy-on-write listener list. Add and Remove may be called
// from any goroutine while another goroutine iterates a Snapshot: the
// snapshot slice is never mutated after it has been published.
type Listeners[T comparable] struct {
	mu   sync.Mutex
	list atomic.Pointer[[]T]
}

// Add appends a listener.
func (l *Listeners[T]) Add(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := append(slices.Clone(l.Snapshot()), v)
	l.list.Store(&next)
}

// Remove drops the first occurrence of v. Unknown listeners are ignored.
func (l *Listeners[T]) Remove(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur := l.Snapshot()
	i := slices.Index(cur, v)
	if i < 0 {
		return
	}
	next := slices.Delete(slices.Clone(cur), i, i+1)
	l.list.Store(&next)
}

// Snapshot returns the current listeners. The slice must not be modified.
func (l *Listeners[T]) Snapshot() []T {
	p := l.list.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Len returns the number of registered listeners.
func (l *Listeners[T]) Len() int {
	return len(l.Snapshot())
}
