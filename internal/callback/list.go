// Package callback holds the ordered callback lists and the per-family registry
// that resolves decoded messages against them.
package callback

import (
	"sync"

	"github.com/google/uuid"
)

// Handle identifies a registration. The zero Handle is never issued.
type Handle struct {
	key    string
	remove func(key string)
}

// Unregister removes the registration. It is safe to call more than once.
func (h Handle) Unregister() {
	if h.remove != nil {
		h.remove(h.key)
	}
}

// Key returns the registration key: the correlation id for one-shot
// registrations, a generated id otherwise.
func (h Handle) Key() string { return h.key }

type listEntry[T any] struct {
	key string
	fn  func(T)
}

// List is an ordered set of callbacks invoked in registration order.
type List[T any] struct {
	mu      sync.Mutex
	entries []listEntry[T]
}

// Add appends fn and returns a handle that removes it.
func (l *List[T]) Add(fn func(T)) Handle {
	key := uuid.NewString()

	l.mu.Lock()
	l.entries = append(l.entries, listEntry[T]{key: key, fn: fn})
	l.mu.Unlock()

	return Handle{key: key, remove: l.remove}
}

// Emit calls every callback with v. Callbacks added or removed while Emit runs
// take effect from the next call.
func (l *List[T]) Emit(v T) int {
	l.mu.Lock()
	snapshot := make([]listEntry[T], len(l.entries))
	copy(snapshot, l.entries)
	l.mu.Unlock()

	for _, e := range snapshot {
		e.fn(v)
	}
	return len(snapshot)
}

// Len returns the number of registered callbacks.
func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *List[T]) remove(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, e := range l.entries {
		if e.key == key {
			l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
			return
		}
	}
}
