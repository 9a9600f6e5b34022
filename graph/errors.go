package graph

import (
	"github.com/KOMKZ/go-yogan-binding/errcode"
)

// ModuleCode graph module code
const ModuleCode = 11

// Error codes: 11xxxx
const (
	ErrCodeMissingDependency = 1
	ErrCodeIndexOutOfRange   = 2
	ErrCodeInvalidNode       = 3
	ErrCodeArgumentType      = 4
	ErrCodeInvalidState      = 5
	ErrCodeCycle             = 6
)

var (
	// ErrMissingDependency a dependency slot was declared with a nil binding
	ErrMissingDependency = errcode.Register(errcode.New(
		ModuleCode, ErrCodeMissingDependency,
		"graph", "error.graph.missing_dependency", "missing dependency",
	))

	// ErrIndexOutOfRange a placeholder points outside the dependency list
	ErrIndexOutOfRange = errcode.Register(errcode.New(
		ModuleCode, ErrCodeIndexOutOfRange,
		"graph", "error.graph.index_out_of_range", "dependency index out of range",
	))

	// ErrInvalidNode malformed description tree
	ErrInvalidNode = errcode.Register(errcode.New(
		ModuleCode, ErrCodeInvalidNode,
		"graph", "error.graph.invalid_node", "invalid description node",
	))

	// ErrArgumentType a produced value does not fit the constructor parameter
	ErrArgumentType = errcode.Register(errcode.New(
		ModuleCode, ErrCodeArgumentType,
		"graph", "error.graph.argument_type", "argument type mismatch",
	))

	// ErrInvalidState an inlinable dependency has no description yet
	ErrInvalidState = errcode.Register(errcode.New(
		ModuleCode, ErrCodeInvalidState,
		"graph", "error.graph.invalid_state", "binding is not fully configured",
	))

	// ErrCycle inlining reached a description that is already being inlined
	ErrCycle = errcode.Register(errcode.New(
		ModuleCode, ErrCodeCycle,
		"graph", "error.graph.cycle", "dependency cycle",
	))
)
