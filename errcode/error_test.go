package errcode

import (
	"errors"
	"testing"
)

// TestLayeredError_New test for creating layered error codes
func TestLayeredError_New(t *testing.T) {
	err := New(12, 3, "binding", "error.binding.invalid_state", "binding is not configured")

	if err.Code() != 120003 {
		t.Errorf("expected code 120003, got %d", err.Code())
	}
	if err.Module() != "binding" {
		t.Errorf("expected module 'binding', got %s", err.Module())
	}
	if err.MsgKey() != "error.binding.invalid_state" {
		t.Errorf("expected msgKey 'error.binding.invalid_state', got %s", err.MsgKey())
	}
	if err.Message() != "binding is not configured" {
		t.Errorf("unexpected message %s", err.Message())
	}
}

// TestLayeredError_Error_WithCause tests the error string with a cause
func TestLayeredError_Error_WithCause(t *testing.T) {
	cause := errors.New("constructor exploded")
	err := New(12, 7, "binding", "error.binding.panic", "constructor panicked").Wrap(cause)

	expected := "constructor panicked: constructor exploded"
	if err.Error() != expected {
		t.Errorf("expected '%s', got %s", expected, err.Error())
	}
}

// TestLayeredError_WithMsgf dynamic messages keep the code
func TestLayeredError_WithMsgf(t *testing.T) {
	original := New(11, 1, "graph", "error.graph.missing_dependency", "missing dependency")
	modified := original.WithMsgf("dependency %d is nil", 2)

	if original.Message() != "missing dependency" {
		t.Errorf("original message should not change, got %s", original.Message())
	}
	if modified.Message() != "dependency 2 is nil" {
		t.Errorf("unexpected message %s", modified.Message())
	}
	if modified.Code() != original.Code() {
		t.Errorf("code should not change, got %d", modified.Code())
	}
}

// TestLayeredError_WithData copy on write
func TestLayeredError_WithData(t *testing.T) {
	original := New(13, 1, "registry", "error.registry.type_not_found", "type not found")
	modified := original.WithData("type", "*main.Sample")

	if len(original.Data()) != 0 {
		t.Errorf("original data should be empty, got %d items", len(original.Data()))
	}
	if modified.Data()["type"] != "*main.Sample" {
		t.Errorf("expected type=*main.Sample, got %v", modified.Data()["type"])
	}
}

// TestLayeredError_Wrap wrapping and unwrapping
func TestLayeredError_Wrap(t *testing.T) {
	cause := errors.New("boom")
	err := New(12, 1, "binding", "error.binding.argument", "invalid argument")
	wrapped := err.Wrap(cause)

	if wrapped.Cause() != cause {
		t.Errorf("expected cause %v, got %v", cause, wrapped.Cause())
	}
	if errors.Unwrap(wrapped) != cause {
		t.Errorf("expected Unwrap to return %v", cause)
	}
	if err.Wrap(nil) != err {
		t.Errorf("wrapping nil should return original error")
	}
}

// TestLayeredError_Wrapf wrap with a formatted message
func TestLayeredError_Wrapf(t *testing.T) {
	cause := errors.New("boom")
	err := New(12, 1, "binding", "error.binding.argument", "invalid argument")

	wrapped := err.Wrapf(cause, "argument %q", "selector")
	if wrapped.Message() != `argument "selector"` {
		t.Errorf("unexpected message %s", wrapped.Message())
	}

	noCause := err.Wrapf(nil, "argument %q", "inner")
	if noCause.Cause() != nil {
		t.Errorf("expected no cause")
	}
	if noCause.Message() != `argument "inner"` {
		t.Errorf("unexpected message %s", noCause.Message())
	}
}

// TestLayeredError_Is errors.Is compares codes
func TestLayeredError_Is(t *testing.T) {
	err1 := New(11, 1, "graph", "error.graph.missing_dependency", "missing dependency")
	err2 := New(11, 1, "graph", "error.graph.missing_dependency", "missing dependency")
	err3 := New(11, 2, "graph", "error.graph.index_out_of_range", "index out of range")

	if !errors.Is(err1, err2) {
		t.Errorf("err1 and err2 should be equal")
	}
	if errors.Is(err1, err3) {
		t.Errorf("err1 and err3 should not be equal")
	}
	if !errors.Is(err1.WithMsg("other"), err1) {
		t.Errorf("message changes must not affect equality")
	}

	cause := errors.New("root")
	if !errors.Is(err1.Wrap(cause), cause) {
		t.Errorf("should match original error in chain")
	}
}

// TestLayeredError_String debug representation
func TestLayeredError_String(t *testing.T) {
	err := New(13, 1, "registry", "error.registry.type_not_found", "type not found")

	expected := "LayeredError{code:130001, module:registry, msg:type not found}"
	if err.String() != expected {
		t.Errorf("expected %s, got %s", expected, err.String())
	}

	withCause := err.Wrap(errors.New("x"))
	expected = "LayeredError{code:130001, module:registry, msg:type not found, cause:x}"
	if withCause.String() != expected {
		t.Errorf("expected %s, got %s", expected, withCause.String())
	}
}
