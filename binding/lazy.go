package binding

import (
	"reflect"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/KOMKZ/go-yogan-binding/graph"
)

// State lazy binding compile state
type State int32

const (
	StateUnbuilt State = iota
	StateBuilding
	StateBuilt
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateUnbuilt:
		return "Unbuilt"
	case StateBuilding:
		return "Building"
	case StateBuilt:
		return "Built"
	default:
		return "Unknown"
	}
}

const compileKey = "compile"

// Lazy binding built from a construction description. The description is
// compiled on first Resolve, with nested lazy dependencies inlined, and the
// compiled producer is reused by every later call. Values are not cached.
//
// The zero value is an unconfigured binding; see Configure.
type Lazy[T any] struct {
	desc     atomic.Pointer[graph.Description]
	producer atomic.Pointer[graph.Producer]
	state    atomic.Int32
	group    singleflight.Group
	opts     options
}

// NewLazy creates a lazy binding over desc
func NewLazy[T any](desc *graph.Description, opts ...Option) (*Lazy[T], error) {
	if desc == nil {
		return nil, argumentError("desc")
	}
	l := &Lazy[T]{opts: newOptions(opts)}
	l.desc.Store(desc)
	return l, nil
}

// NewDeferredLazy creates a lazy binding whose description is set later by
// Configure. Resolving it before then fails with ErrInvalidState.
func NewDeferredLazy[T any](opts ...Option) *Lazy[T] {
	return &Lazy[T]{opts: newOptions(opts)}
}

// Declare builds a description with a fresh builder and wraps it in a lazy
// binding. A nil dependency handed to the builder fails here, not on Resolve.
//
//	svc, err := binding.Declare[*Service](func(b *graph.Builder) graph.Node {
//		return graph.Ctor1("NewService", NewService, b.Dependency(repo))
//	})
func Declare[T any](declare func(b *graph.Builder) graph.Node, opts ...Option) (*Lazy[T], error) {
	if declare == nil {
		return nil, argumentError("declare")
	}
	b := graph.NewBuilder()
	desc, err := b.Build(declare(b))
	if err != nil {
		return nil, err
	}
	return NewLazy[T](desc, opts...)
}

// MustDeclare is Declare for static graphs; it panics on a declaration error
func MustDeclare[T any](declare func(b *graph.Builder) graph.Node, opts ...Option) *Lazy[T] {
	l, err := Declare[T](declare, opts...)
	if err != nil {
		panic(err)
	}
	return l
}

// Configure sets the description of a deferred binding. It can be set once.
func (l *Lazy[T]) Configure(desc *graph.Description) error {
	if desc == nil {
		return argumentError("desc")
	}
	if !l.desc.CompareAndSwap(nil, desc) {
		return ErrAlreadyConfigured.WithMsgf("lazy binding %v already has a description", l.Type())
	}
	return nil
}

// Description returns the raw description, nil while unconfigured.
// The compiler uses it to inline this binding into its dependents.
func (l *Lazy[T]) Description() *graph.Description {
	return l.desc.Load()
}

// Type returns the declared type T
func (l *Lazy[T]) Type() reflect.Type {
	return reflect.TypeFor[T]()
}

// Kind returns KindLazy
func (l *Lazy[T]) Kind() Kind {
	return KindLazy
}

// State returns the compile state
func (l *Lazy[T]) State() State {
	return State(l.state.Load())
}

// IsBuilt reports whether the compiled producer exists; it never triggers a build
func (l *Lazy[T]) IsBuilt() bool {
	return l.producer.Load() != nil
}

// Resolve compiles on first use, then runs the compiled producer
func (l *Lazy[T]) Resolve() (T, error) {
	start := time.Now()
	v, err := l.resolve()
	err = normalize(l.Type(), err)
	l.opts.resolved(l.Type(), KindLazy, start, err)
	return v, err
}

// ResolveAny implements Untyped
func (l *Lazy[T]) ResolveAny() (any, error) {
	return resolveAny[T](l)
}

func (l *Lazy[T]) resolve() (T, error) {
	produce, err := l.compiled()
	if err != nil {
		var zero T
		return zero, err
	}
	return invoke(func() (T, error) {
		out, err := produce()
		if err != nil {
			var zero T
			return zero, err
		}
		return cast[T](out)
	})
}

// compiled returns the memoized producer, compiling at most once at a time.
// Concurrent first callers share one compilation; a failed compile is not
// remembered, so the next call tries again.
func (l *Lazy[T]) compiled() (graph.Producer, error) {
	if p := l.producer.Load(); p != nil {
		return *p, nil
	}

	v, err, _ := l.group.Do(compileKey, func() (any, error) {
		if p := l.producer.Load(); p != nil {
			return *p, nil
		}

		desc := l.desc.Load()
		if desc == nil {
			return nil, ErrInvalidState.WithMsgf("lazy binding %v has no description", l.Type())
		}

		l.state.Store(int32(StateBuilding))
		start := time.Now()
		p, err := graph.Compile(desc)
		l.opts.compiled(l.Type(), start, err)
		if err != nil {
			l.state.Store(int32(StateUnbuilt))
			return nil, err
		}

		l.producer.Store(&p)
		l.state.Store(int32(StateBuilt))
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(graph.Producer), nil
}

func cast[T any](v any) (T, error) {
	var zero T
	if out, ok := v.(T); ok {
		return out, nil
	}
	want := reflect.TypeFor[T]()
	if v == nil {
		switch want.Kind() {
		case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
			return zero, nil
		}
	}
	return zero, ErrResultType.WithMsgf("produced %T, want %v", v, want)
}
