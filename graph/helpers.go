package graph

import (
	"reflect"
)

// Value constant node
func Value(v any) *Constant {
	return &Constant{Value: v}
}

// Ref placeholder for dependency i (hand-built trees)
func Ref(i int) *DependencyRef {
	return &DependencyRef{Index: i}
}

// NewCall untyped call node
func NewCall(name string, fn Func, args ...Node) *Call {
	return &Call{Name: name, Fn: fn, Args: args}
}

// Ctor0 call to a constructor without arguments
func Ctor0[R any](name string, fn func() R) *Call {
	return &Call{
		Name: name,
		Fn: func([]any) (any, error) {
			return fn(), nil
		},
	}
}

// Ctor1 call to a one-argument constructor
func Ctor1[A, R any](name string, fn func(A) R, a Node) *Call {
	return &Call{
		Name: name,
		Fn: func(args []any) (any, error) {
			av, err := convert[A](name, 0, args[0])
			if err != nil {
				return nil, err
			}
			return fn(av), nil
		},
		Args: []Node{a},
	}
}

// Ctor2 call to a two-argument constructor
func Ctor2[A, B, R any](name string, fn func(A, B) R, a, b Node) *Call {
	return &Call{
		Name: name,
		Fn: func(args []any) (any, error) {
			av, err := convert[A](name, 0, args[0])
			if err != nil {
				return nil, err
			}
			bv, err := convert[B](name, 1, args[1])
			if err != nil {
				return nil, err
			}
			return fn(av, bv), nil
		},
		Args: []Node{a, b},
	}
}

// Ctor3 call to a three-argument constructor
func Ctor3[A, B, C, R any](name string, fn func(A, B, C) R, a, b, c Node) *Call {
	return &Call{
		Name: name,
		Fn: func(args []any) (any, error) {
			av, err := convert[A](name, 0, args[0])
			if err != nil {
				return nil, err
			}
			bv, err := convert[B](name, 1, args[1])
			if err != nil {
				return nil, err
			}
			cv, err := convert[C](name, 2, args[2])
			if err != nil {
				return nil, err
			}
			return fn(av, bv, cv), nil
		},
		Args: []Node{a, b, c},
	}
}

// Factory0 call to a fallible constructor without arguments
func Factory0[R any](name string, fn func() (R, error)) *Call {
	return &Call{
		Name: name,
		Fn: func([]any) (any, error) {
			return result(fn())
		},
	}
}

// Factory1 call to a fallible one-argument constructor
func Factory1[A, R any](name string, fn func(A) (R, error), a Node) *Call {
	return &Call{
		Name: name,
		Fn: func(args []any) (any, error) {
			av, err := convert[A](name, 0, args[0])
			if err != nil {
				return nil, err
			}
			return result(fn(av))
		},
		Args: []Node{a},
	}
}

// Factory2 call to a fallible two-argument constructor
func Factory2[A, B, R any](name string, fn func(A, B) (R, error), a, b Node) *Call {
	return &Call{
		Name: name,
		Fn: func(args []any) (any, error) {
			av, err := convert[A](name, 0, args[0])
			if err != nil {
				return nil, err
			}
			bv, err := convert[B](name, 1, args[1])
			if err != nil {
				return nil, err
			}
			return result(fn(av, bv))
		},
		Args: []Node{a, b},
	}
}

// Factory3 call to a fallible three-argument constructor
func Factory3[A, B, C, R any](name string, fn func(A, B, C) (R, error), a, b, c Node) *Call {
	return &Call{
		Name: name,
		Fn: func(args []any) (any, error) {
			av, err := convert[A](name, 0, args[0])
			if err != nil {
				return nil, err
			}
			bv, err := convert[B](name, 1, args[1])
			if err != nil {
				return nil, err
			}
			cv, err := convert[C](name, 2, args[2])
			if err != nil {
				return nil, err
			}
			return result(fn(av, bv, cv))
		},
		Args: []Node{a, b, c},
	}
}

// Init member initializer over base
func Init(base Node, fields ...Field) *MemberInit {
	return &MemberInit{Base: base, Fields: fields}
}

// Assign typed field assignment for Init
//
//	graph.Init(graph.Ctor0("NewSample", NewSample),
//		graph.Assign("Clock", b.Dependency(clock), func(s *Sample, c Clock) { s.Clock = c }))
func Assign[T, V any](name string, value Node, set func(T, V)) Field {
	return Field{
		Name:  name,
		Value: value,
		Set: func(target, val any) error {
			t, err := convert[T](name, -1, target)
			if err != nil {
				return err
			}
			v, err := convert[V](name, 0, val)
			if err != nil {
				return err
			}
			set(t, v)
			return nil
		},
	}
}

func result[R any](v R, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

// convert asserts v to T; nil converts to the zero value of nilable types.
// pos -1 denotes the MemberInit target.
func convert[T any](name string, pos int, v any) (T, error) {
	var zero T
	if t, ok := v.(T); ok {
		return t, nil
	}
	want := reflect.TypeFor[T]()
	if v == nil && nilable(want) {
		return zero, nil
	}
	if pos < 0 {
		return zero, ErrArgumentType.
			WithMsgf("%s: cannot assign field on %T, want %v", name, v, want)
	}
	return zero, ErrArgumentType.
		WithMsgf("%s: argument %d: cannot use %T as %v", name, pos, v, want)
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return true
	}
	return false
}
