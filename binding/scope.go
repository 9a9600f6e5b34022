package binding

import (
	"reflect"
	"runtime"
	"sync/atomic"
	"time"
	"weak"
)

// scoped inner binding slot shared by both scope kinds
type scoped[T any] struct {
	inner atomic.Pointer[Binding[T]]
	opts  options
}

// SetBinding sets the binding resolved on a cache miss.
// A later call replaces it for keys not cached yet.
func (s *scoped[T]) SetBinding(inner Binding[T]) error {
	if isNil(inner) {
		return argumentError("inner")
	}
	s.inner.Store(&inner)
	return nil
}

// Inner returns the inner binding, nil before SetBinding
func (s *scoped[T]) Inner() Binding[T] {
	if p := s.inner.Load(); p != nil {
		return *p
	}
	return nil
}

func (s *scoped[T]) resolveInner() (T, error) {
	p := s.inner.Load()
	if p == nil {
		var zero T
		return zero, ErrInvalidState.WithMsgf("scoped binding %v has no inner binding", reflect.TypeFor[T]())
	}
	return (*p).Resolve()
}

// ReferenceScoped caches one value per live key object. Keys are compared by
// identity and held weakly: once a key is unreachable its entry is dropped.
//
// A cached value that references its own key keeps the key reachable, so
// such an entry lives as long as the binding. Zero-sized K is rejected:
// distinct pointers to zero-sized values may share an address.
type ReferenceScoped[T any, K any] struct {
	scoped[T]
	selector func() *K
	cache    *flightCache[weak.Pointer[K], T]
}

// NewReferenceScoped creates a reference scope keyed by selector()
func NewReferenceScoped[T any, K any](selector func() *K, opts ...Option) (*ReferenceScoped[T, K], error) {
	if selector == nil {
		return nil, argumentError("selector")
	}
	if reflect.TypeFor[K]().Size() == 0 {
		return nil, ErrArgument.WithMsgf("scope key type %v is zero-sized", reflect.TypeFor[K]()).
			WithData("argument", "selector")
	}
	return &ReferenceScoped[T, K]{
		scoped:   scoped[T]{opts: newOptions(opts)},
		selector: selector,
		cache:    newFlightCache[weak.Pointer[K], T](),
	}, nil
}

// GroupByReference creates a reference scope over inner
func GroupByReference[T any, K any](selector func() *K, inner Binding[T], opts ...Option) (*ReferenceScoped[T, K], error) {
	s, err := NewReferenceScoped[T](selector, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.SetBinding(inner); err != nil {
		return nil, err
	}
	return s, nil
}

// Type returns the declared type T
func (s *ReferenceScoped[T, K]) Type() reflect.Type {
	return reflect.TypeFor[T]()
}

// Kind returns KindReferenceScoped
func (s *ReferenceScoped[T, K]) Kind() Kind {
	return KindReferenceScoped
}

// Len returns the number of live entries
func (s *ReferenceScoped[T, K]) Len() int {
	return s.cache.len()
}

// Resolve returns the value cached for the current key, constructing it once
func (s *ReferenceScoped[T, K]) Resolve() (T, error) {
	start := time.Now()
	v, err := s.resolve()
	err = normalize(s.Type(), err)
	s.opts.resolved(s.Type(), KindReferenceScoped, start, err)
	return v, err
}

// ResolveAny implements Untyped
func (s *ReferenceScoped[T, K]) ResolveAny() (any, error) {
	return resolveAny[T](s)
}

func (s *ReferenceScoped[T, K]) resolve() (T, error) {
	var zero T
	key, err := invoke(func() (*K, error) { return s.selector(), nil })
	if err != nil {
		return zero, err
	}
	if key == nil {
		return zero, ErrNilScopeKey.WithMsgf("selector for %v returned nil", s.Type())
	}

	wp := weak.Make(key)
	v, src, err := s.cache.do(wp, s.resolveInner)
	s.opts.scopeLookup(s.Type(), KindReferenceScoped, src != sourceBuilt)
	if err != nil {
		return zero, err
	}
	if src == sourceBuilt {
		cache := s.cache
		runtime.AddCleanup(key, func(wp weak.Pointer[K]) {
			cache.delete(wp)
		}, wp)
	}
	runtime.KeepAlive(key)
	return v, nil
}

// ValueScoped caches one value per key value, compared with ==. Every key
// ever seen is retained for the lifetime of the binding.
type ValueScoped[T any, K comparable] struct {
	scoped[T]
	selector func() K
	cache    *flightCache[K, T]
}

// NewValueScoped creates a value scope keyed by selector()
func NewValueScoped[T any, K comparable](selector func() K, opts ...Option) (*ValueScoped[T, K], error) {
	if selector == nil {
		return nil, argumentError("selector")
	}
	return &ValueScoped[T, K]{
		scoped:   scoped[T]{opts: newOptions(opts)},
		selector: selector,
		cache:    newFlightCache[K, T](),
	}, nil
}

// GroupByValue creates a value scope over inner
func GroupByValue[T any, K comparable](selector func() K, inner Binding[T], opts ...Option) (*ValueScoped[T, K], error) {
	s, err := NewValueScoped[T](selector, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.SetBinding(inner); err != nil {
		return nil, err
	}
	return s, nil
}

// Singleton value scope with a constant key: one value per process
func Singleton[T any](inner Binding[T], opts ...Option) (*ValueScoped[T, bool], error) {
	return GroupByValue(func() bool { return true }, inner, opts...)
}

// Type returns the declared type T
func (s *ValueScoped[T, K]) Type() reflect.Type {
	return reflect.TypeFor[T]()
}

// Kind returns KindValueScoped
func (s *ValueScoped[T, K]) Kind() Kind {
	return KindValueScoped
}

// Len returns the number of cached keys
func (s *ValueScoped[T, K]) Len() int {
	return s.cache.len()
}

// Resolve returns the value cached for the current key, constructing it once
func (s *ValueScoped[T, K]) Resolve() (T, error) {
	start := time.Now()
	v, err := s.resolve()
	err = normalize(s.Type(), err)
	s.opts.resolved(s.Type(), KindValueScoped, start, err)
	return v, err
}

// ResolveAny implements Untyped
func (s *ValueScoped[T, K]) ResolveAny() (any, error) {
	return resolveAny[T](s)
}

func (s *ValueScoped[T, K]) resolve() (T, error) {
	key, err := invoke(func() (K, error) { return s.selector(), nil })
	if err != nil {
		var zero T
		return zero, err
	}
	v, src, err := s.cache.do(key, s.resolveInner)
	s.opts.scopeLookup(s.Type(), KindValueScoped, src != sourceBuilt)
	return v, err
}
