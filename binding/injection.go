package binding

import (
	"reflect"
	"sync/atomic"
	"time"
)

// Injection populates an existing value instead of constructing one, e.g.
// wiring fields of an object created by a framework.
//
// The zero value is unconfigured; SetFunc finishes it. Inject on an
// unconfigured injection fails with ErrInvalidState.
type Injection[T any] struct {
	fn   atomic.Pointer[func(T) error]
	opts options
}

// NewInjection creates a configured injection
func NewInjection[T any](fn func(T) error, opts ...Option) (*Injection[T], error) {
	if fn == nil {
		return nil, argumentError("fn")
	}
	inj := &Injection[T]{opts: newOptions(opts)}
	inj.fn.Store(&fn)
	return inj, nil
}

// NewDeferredInjection creates an injection whose function is set later
func NewDeferredInjection[T any](opts ...Option) *Injection[T] {
	return &Injection[T]{opts: newOptions(opts)}
}

// SetFunc sets the injection function; it can be set once
func (i *Injection[T]) SetFunc(fn func(T) error) error {
	if fn == nil {
		return argumentError("fn")
	}
	if !i.fn.CompareAndSwap(nil, &fn) {
		return ErrAlreadyConfigured.WithMsgf("injection into %v already has a function", i.Type())
	}
	return nil
}

// Type returns the target type T
func (i *Injection[T]) Type() reflect.Type {
	return reflect.TypeFor[T]()
}

// Kind returns KindInjection
func (i *Injection[T]) Kind() Kind {
	return KindInjection
}

// Inject runs the injection function on target
func (i *Injection[T]) Inject(target T) error {
	start := time.Now()
	err := i.inject(target)
	err = normalize(i.Type(), err)
	i.opts.resolved(i.Type(), KindInjection, start, err)
	return err
}

func (i *Injection[T]) inject(target T) error {
	p := i.fn.Load()
	if p == nil {
		return ErrInvalidState.WithMsgf("injection into %v has no function", i.Type())
	}
	fn := *p
	_, err := invoke(func() (struct{}, error) {
		return struct{}{}, fn(target)
	})
	return err
}
