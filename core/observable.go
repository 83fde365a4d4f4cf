package core

import "sync"

// Writable holds a value and notifies subscribers synchronously on every Set.
type Writable[T any] struct {
	mu     sync.RWMutex
	value  T
	nextID int
	subs   map[int]func(T)
}

func NewWritable[T any](initial T) *Writable[T] {
	return &Writable[T]{value: initial, subs: make(map[int]func(T))}
}

func (w *Writable[T]) Get() T {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.value
}

// Set stores v and calls every subscriber before returning.
func (w *Writable[T]) Set(v T) {
	w.mu.Lock()
	w.value = v
	subs := make([]func(T), 0, len(w.subs))
	for _, fn := range w.subs {
		subs = append(subs, fn)
	}
	w.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Subscribe calls fn with the current value, then on every Set.
// The returned func removes the subscription.
func (w *Writable[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.subs[id] = fn
	current := w.value
	w.mu.Unlock()

	fn(current)

	return func() {
		w.mu.Lock()
		delete(w.subs, id)
		w.mu.Unlock()
	}
}
