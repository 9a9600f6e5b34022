// Package binding provides producers of typed values and the caches that
// memoize them per scope key.
//
// Every variant funnels failures into a single *ResolutionError. Lazy bindings
// compile their description once and inline nested lazy dependencies, so a
// graph of lazies resolves through one flat producer.
package binding

import (
	"reflect"
	"time"

	"github.com/KOMKZ/go-yogan-binding/graph"
)

// Kind binding variant
type Kind int

const (
	KindConstructor Kind = iota
	KindLazy
	KindReferenceScoped
	KindValueScoped
	KindInjection
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindConstructor:
		return "constructor"
	case KindLazy:
		return "lazy"
	case KindReferenceScoped:
		return "reference_scoped"
	case KindValueScoped:
		return "value_scoped"
	case KindInjection:
		return "injection"
	default:
		return "unknown"
	}
}

// Untyped type-erased binding, as stored by registries and seen by the compiler
type Untyped interface {
	graph.Dependency
	Kind() Kind
}

// Binding produces values of T
type Binding[T any] interface {
	Untyped
	Resolve() (T, error)
}

// Option configures a binding
type Option func(*options)

type options struct {
	observer Observer
}

// WithObserver reports resolutions to o
func WithObserver(o Observer) Option {
	return func(opts *options) {
		opts.observer = o
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func (o *options) resolved(t reflect.Type, kind Kind, start time.Time, err error) {
	if o.observer != nil {
		o.observer.Resolved(t, kind, time.Since(start), err)
	}
}

func (o *options) compiled(t reflect.Type, start time.Time, err error) {
	if o.observer != nil {
		o.observer.Compiled(t, time.Since(start), err)
	}
}

func (o *options) scopeLookup(t reflect.Type, kind Kind, hit bool) {
	if o.observer != nil {
		o.observer.ScopeLookup(t, kind, hit)
	}
}

// invoke runs fn, turning a panic into ErrPanic
func invoke[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, panicError(r)
		}
	}()
	return fn()
}

func resolveAny[T any](b Binding[T]) (any, error) {
	v, err := b.Resolve()
	if err != nil {
		return nil, err
	}
	return v, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
