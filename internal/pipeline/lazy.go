package pipeline

import (
	"sync"
	"sync/atomic"
)

// lazy initializes a value once on first use and keeps it for the life of
// the process. A failed initialization is remembered too.
type lazy[T any] struct {
	once sync.Once
	init func() (T, error)
	v    T
	err  error
	done atomic.Bool
}

func newLazy[T any](init func() (T, error)) *lazy[T] {
	return &lazy[T]{init: init}
}

func ready[T any](v T) *lazy[T] {
	l := &lazy[T]{v: v}
	l.once.Do(func() {})
	l.done.Store(true)
	return l
}

func (l *lazy[T]) get() (T, error) {
	l.once.Do(func() {
		l.v, l.err = l.init()
		l.done.Store(true)
	})
	return l.v, l.err
}

// peek returns the value only if it was already initialized.
func (l *lazy[T]) peek() (T, bool) {
	if !l.done.Load() {
		var zero T
		return zero, false
	}
	return l.v, l.err == nil
}
