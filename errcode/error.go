// Package errcode provides hierarchical error codes shared by the binding engine packages
// Error code format: MMBBBB (MM = module code 2 digits, BBBB = business code 4 digits)
package errcode

import (
	"fmt"
)

// LayeredError hierarchical error code
// Supports: error chaining, dynamic messages, context data, message keys
type LayeredError struct {
	module string         // Module name (graph, binding, registry)
	code   int            // Complete error code (MMBBBB, e.g., 120003)
	msgKey string         // Message key (e.g., "error.binding.invalid_state")
	msg    string         // Default message
	data   map[string]any // context data
	cause  error          // Original error (error chain)
}

// New creates a hierarchical error code
// moduleCode: Module code (10-99)
// businessCode: Business code (0001-9999)
func New(moduleCode, businessCode int, module, msgKey, msg string) *LayeredError {
	return &LayeredError{
		module: module,
		code:   moduleCode*10000 + businessCode,
		msgKey: msgKey,
		msg:    msg,
		data:   make(map[string]any),
	}
}

func (e *LayeredError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Code gets error code
func (e *LayeredError) Code() int {
	return e.code
}

// Module gets module name
func (e *LayeredError) Module() string {
	return e.module
}

// MsgKey retrieves the message key
func (e *LayeredError) MsgKey() string {
	return e.msgKey
}

// Message returns the message without the cause
func (e *LayeredError) Message() string {
	return e.msg
}

// Data retrieves context data
func (e *LayeredError) Data() map[string]any {
	return e.data
}

// Cause gets original error
func (e *LayeredError) Cause() error {
	return e.cause
}

// Unwrap supports Go 1.13+ error chains
func (e *LayeredError) Unwrap() error {
	return e.cause
}

// WithMsg replaces the message (returns new instance)
func (e *LayeredError) WithMsg(msg string) *LayeredError {
	clone := *e
	clone.msg = msg
	return &clone
}

// WithMsgf formats a replacement message (returns new instance)
func (e *LayeredError) WithMsgf(format string, args ...any) *LayeredError {
	clone := *e
	clone.msg = fmt.Sprintf(format, args...)
	return &clone
}

// WithData adds a single context value (returns new instance)
func (e *LayeredError) WithData(key string, value any) *LayeredError {
	clone := *e
	clone.data = e.cloneData()
	clone.data[key] = value
	return &clone
}

// Wrap wraps the original error (returns new instance)
func (e *LayeredError) Wrap(cause error) *LayeredError {
	if cause == nil {
		return e
	}
	clone := *e
	clone.cause = cause
	return &clone
}

// Wrapf wraps the original error and formats the message (returns new instance)
func (e *LayeredError) Wrapf(cause error, format string, args ...any) *LayeredError {
	if cause == nil {
		return e.WithMsgf(format, args...)
	}
	clone := *e
	clone.cause = cause
	clone.msg = fmt.Sprintf(format, args...)
	return &clone
}

// Is implements errors.Is by comparing codes
func (e *LayeredError) Is(target error) bool {
	t, ok := target.(*LayeredError)
	if !ok {
		return false
	}
	return e.code == t.code
}

func (e *LayeredError) cloneData() map[string]any {
	data := make(map[string]any, len(e.data)+1)
	for k, v := range e.data {
		data[k] = v
	}
	return data
}

// String returns a debug representation
func (e *LayeredError) String() string {
	if e.cause != nil {
		return fmt.Sprintf("LayeredError{code:%d, module:%s, msg:%s, cause:%v}",
			e.code, e.module, e.msg, e.cause)
	}
	return fmt.Sprintf("LayeredError{code:%d, module:%s, msg:%s}",
		e.code, e.module, e.msg)
}
