package binding

import (
	"reflect"
	"time"
)

// Constructor binding around a producer closure. Every Resolve calls fn; no
// caching happens at this layer.
type Constructor[T any] struct {
	fn   func() (T, error)
	opts options
}

// NewConstructor creates a constructor binding
func NewConstructor[T any](fn func() (T, error), opts ...Option) (*Constructor[T], error) {
	if fn == nil {
		return nil, argumentError("fn")
	}
	return &Constructor[T]{fn: fn, opts: newOptions(opts)}, nil
}

// MustConstructor is NewConstructor for static graphs; it panics on a nil fn
func MustConstructor[T any](fn func() (T, error), opts ...Option) *Constructor[T] {
	c, err := NewConstructor(fn, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Type returns the declared type T
func (c *Constructor[T]) Type() reflect.Type {
	return reflect.TypeFor[T]()
}

// Kind returns KindConstructor
func (c *Constructor[T]) Kind() Kind {
	return KindConstructor
}

// Resolve calls the producer
func (c *Constructor[T]) Resolve() (T, error) {
	start := time.Now()
	v, err := invoke(c.fn)
	err = normalize(c.Type(), err)
	c.opts.resolved(c.Type(), KindConstructor, start, err)
	if err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// ResolveAny implements Untyped
func (c *Constructor[T]) ResolveAny() (any, error) {
	return resolveAny[T](c)
}
