package binding

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/KOMKZ/go-yogan-binding/errcode"
	"github.com/KOMKZ/go-yogan-binding/graph"
)

// ModuleCode binding module code
const ModuleCode = 12

// Error codes: 12xxxx
const (
	ErrCodeArgument          = 1
	ErrCodePanic             = 2
	ErrCodeAlreadyConfigured = 3
	ErrCodeResultType        = 4
	ErrCodeNilScopeKey       = 5
)

var (
	// ErrArgument a required setup argument was absent; returned at setup time only
	ErrArgument = errcode.Register(errcode.New(
		ModuleCode, ErrCodeArgument,
		"binding", "error.binding.argument", "invalid argument",
	))

	// ErrPanic user construction logic panicked
	ErrPanic = errcode.Register(errcode.New(
		ModuleCode, ErrCodePanic,
		"binding", "error.binding.panic", "construction panicked",
	))

	// ErrAlreadyConfigured a set-once field was set twice
	ErrAlreadyConfigured = errcode.Register(errcode.New(
		ModuleCode, ErrCodeAlreadyConfigured,
		"binding", "error.binding.already_configured", "binding is already configured",
	))

	// ErrResultType the compiled producer returned a value of the wrong type
	ErrResultType = errcode.Register(errcode.New(
		ModuleCode, ErrCodeResultType,
		"binding", "error.binding.result_type", "produced value has the wrong type",
	))

	// ErrNilScopeKey a reference scope selector returned nil
	ErrNilScopeKey = errcode.Register(errcode.New(
		ModuleCode, ErrCodeNilScopeKey,
		"binding", "error.binding.nil_scope_key", "scope key is nil",
	))

	// ErrInvalidState binding resolved before its two-phase setup finished
	ErrInvalidState = graph.ErrInvalidState
)

// ResolutionError the only error a Resolve call returns.
// Type is the declared type of the binding the caller resolved, Cause the
// innermost failure.
type ResolutionError struct {
	Type  reflect.Type
	Cause error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("binding: resolve %v: %v", e.Type, e.Cause)
}

func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// normalize funnels err into exactly one ResolutionError for t.
// A ResolutionError already in the chain is not wrapped again; its cause is
// kept and re-attributed to t.
func normalize(t reflect.Type, err error) error {
	if err == nil {
		return nil
	}
	var re *ResolutionError
	if errors.As(err, &re) {
		if re.Type == t {
			return re
		}
		return &ResolutionError{Type: t, Cause: re.Cause}
	}
	return &ResolutionError{Type: t, Cause: err}
}

func argumentError(name string) error {
	return ErrArgument.WithMsgf("argument %q is nil", name).WithData("argument", name)
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return ErrPanic.Wrapf(err, "construction panicked: %v", err)
	}
	return ErrPanic.WithMsgf("construction panicked: %v", r)
}
