// Package deferred provides lazily evaluated, memoized values.
//
// Lazy cells break construction cycles: a resource descriptor that relates to
// itself can name its destination before the destination exists. Promises are
// cells whose value is injected later by whoever computes it.
package deferred

import (
	"errors"
	"sync"
)

// ErrNotSet is returned when a Promise is evaluated before Set was called.
var ErrNotSet = errors.New("value is not set")

// Deferred is anything that resolves to a value of type T on demand.
type Deferred[T any] interface {
	Get() (T, error)
}

// Lazy wraps a yielder that is invoked at most once; the result (or error)
// is memoized for subsequent calls.
type Lazy[T any] struct {
	mu      sync.Mutex
	yield   func() (T, error)
	yielded bool
	value   T
	err     error
}

// New returns a Lazy that resolves through yield.
func New[T any](yield func() (T, error)) *Lazy[T] {
	return &Lazy[T]{yield: yield}
}

// Func is like New for yielders that cannot fail.
func Func[T any](yield func() T) *Lazy[T] {
	return New(func() (T, error) { return yield(), nil })
}

// Value returns an already resolved Lazy.
func Value[T any](v T) *Lazy[T] {
	return &Lazy[T]{yielded: true, value: v}
}

// Get resolves the value, invoking the yielder on first use.
func (l *Lazy[T]) Get() (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.yielded {
		l.value, l.err = l.yield()
		l.yielded = true
	}

	return l.value, l.err
}

// MustGet is like Get but panics on error.
func (l *Lazy[T]) MustGet() T {
	v, err := l.Get()
	if err != nil {
		panic(err)
	}

	return v
}

// Resolved reports whether the value has already been yielded.
func (l *Lazy[T]) Resolved() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.yielded
}

// Map returns a Lazy that applies f to the value of d once d resolves.
func Map[T, U any](d Deferred[T], f func(T) (U, error)) *Lazy[U] {
	return New(func() (U, error) {
		v, err := d.Get()
		if err != nil {
			var zero U
			return zero, err
		}

		return f(v)
	})
}

// Promise is a Lazy whose value is supplied through Set.
type Promise[T any] struct {
	Lazy[T]
}

// NewPromise returns an unset Promise.
func NewPromise[T any]() *Promise[T] {
	p := &Promise[T]{}
	p.yield = func() (T, error) {
		var zero T
		return zero, ErrNotSet
	}

	return p
}

// Set injects the value. A later Set overwrites an earlier one.
func (p *Promise[T]) Set(v T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.value, p.err, p.yielded = v, nil, true
}

// Get returns the injected value or ErrNotSet. An unset promise stays
// unresolved, so a later Set still takes effect.
func (p *Promise[T]) Get() (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.yielded {
		var zero T
		return zero, ErrNotSet
	}

	return p.value, p.err
}
