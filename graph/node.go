// Package graph provides the construction description IR and the compiler that
// flattens nested descriptions into a single producer.
//
// A description is a tree of four node kinds:
//
//	Constant        a captured value
//	Call            invoke a constructor with evaluated arguments
//	MemberInit      evaluate a base value, then assign fields on it
//	DependencyRef   placeholder for entry i of the dependency list
//
// Front-ends never build placeholders by hand; they ask a Builder for one:
//
//	b := graph.NewBuilder()
//	desc, err := b.Build(graph.Ctor1("NewService", NewService, b.Dependency(repoBinding)))
package graph

import (
	"reflect"
)

// Kind node kind
type Kind int

const (
	KindConstant Kind = iota
	KindCall
	KindMemberInit
	KindDependency
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindConstant:
		return "Constant"
	case KindCall:
		return "Call"
	case KindMemberInit:
		return "MemberInit"
	case KindDependency:
		return "Dependency"
	default:
		return "Unknown"
	}
}

// Node a description tree node
// The set of implementations is closed to this package
type Node interface {
	Kind() Kind
	isNode()
}

// Func constructor body; args are the evaluated Call arguments in order
type Func func(args []any) (any, error)

// Setter assigns value on target (MemberInit field)
type Setter func(target, value any) error

// Constant captured value
type Constant struct {
	Value any
}

// Call constructor invocation
type Call struct {
	Name string // for diagnostics only
	Fn   Func
	Args []Node
}

// Field one assignment of a MemberInit
type Field struct {
	Name  string
	Value Node
	Set   Setter
}

// MemberInit evaluates Base, then applies Fields in order
type MemberInit struct {
	Base   Node
	Fields []Field
}

// DependencyRef placeholder for dependencies[Index]
type DependencyRef struct {
	Index int
}

func (*Constant) Kind() Kind      { return KindConstant }
func (*Call) Kind() Kind          { return KindCall }
func (*MemberInit) Kind() Kind    { return KindMemberInit }
func (*DependencyRef) Kind() Kind { return KindDependency }

func (*Constant) isNode()      {}
func (*Call) isNode()          {}
func (*MemberInit) isNode()    {}
func (*DependencyRef) isNode() {}

// Dependency a binding as seen by the compiler
type Dependency interface {
	// Type declared produced type
	Type() reflect.Type
	// ResolveAny produces a value; used for opaque call sites
	ResolveAny() (any, error)
}

// Inlinable a dependency whose construction can be spliced into its parent
//
// Description returns nil while the dependency is not configured yet.
type Inlinable interface {
	Dependency
	Description() *Description
}

// isNil reports nil interfaces and typed nil pointers/maps/funcs
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

// keyable reports whether dep can be used as a map key
func keyable(dep Dependency) bool {
	return reflect.TypeOf(dep).Comparable()
}
