// Package registry provides the binding collection: a multi-map from declared
// type to the bindings producing it, kept in insertion order.
package registry

import (
	"context"
	"iter"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/KOMKZ/go-yogan-binding/binding"
	"github.com/KOMKZ/go-yogan-binding/errcode"
	"github.com/KOMKZ/go-yogan-binding/logger"
)

// ModuleCode registry module code
const ModuleCode = 13

// Error codes: 13xxxx
const (
	ErrCodeTypeNotFound = 1
)

// ErrTypeNotFound no binding is registered for the requested type
var ErrTypeNotFound = errcode.Register(errcode.New(
	ModuleCode, ErrCodeTypeNotFound,
	"registry", "error.registry.type_not_found", "type not found",
))

// Collection binding registry, safe for concurrent use.
// Bindings resolve outside the lock on a snapshot of their bucket.
type Collection struct {
	mu      sync.RWMutex
	buckets map[reflect.Type][]binding.Untyped
	order   []reflect.Type // types by first insertion
	count   int
	logger  *logger.CtxZapLogger // optional, set once
}

// NewCollection creates an empty collection
func NewCollection() *Collection {
	return &Collection{
		buckets: make(map[reflect.Type][]binding.Untyped),
	}
}

// FromBindings creates a collection holding bindings in order.
// A nil slice yields an empty collection.
func FromBindings(bindings []binding.Untyped) (*Collection, error) {
	c := NewCollection()
	if err := c.AddRange(bindings); err != nil {
		return nil, err
	}
	return c, nil
}

// SetLogger sets the logger (only once)
func (c *Collection) SetLogger(l *logger.CtxZapLogger) {
	if l == nil {
		panic("registry: logger must not be nil")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.logger != nil {
		panic("registry: logger already set")
	}
	c.logger = l
}

func (c *Collection) logDebug(msg string, fields ...zap.Field) {
	if c.logger != nil {
		c.logger.DebugCtx(context.Background(), msg, fields...)
	}
}

// Add appends b to the bucket of its declared type
func (c *Collection) Add(b binding.Untyped) error {
	if isNil(b) {
		return binding.ErrArgument.WithMsg(`argument "binding" is nil`).WithData("argument", "binding")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.add(b)
	return nil
}

// AddRange appends every binding in order. Nothing is added when any
// element is nil. A nil slice is a no-op.
func (c *Collection) AddRange(bindings []binding.Untyped) error {
	for i, b := range bindings {
		if isNil(b) {
			return binding.ErrArgument.WithMsgf("binding #%d is nil", i).WithData("index", i)
		}
	}
	if len(bindings) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range bindings {
		c.add(b)
	}
	return nil
}

func (c *Collection) add(b binding.Untyped) {
	t := b.Type()
	bucket, ok := c.buckets[t]
	if !ok {
		c.order = append(c.order, t)
	}
	c.buckets[t] = append(bucket, b)
	c.count++
	c.logDebug("binding added", zap.Stringer("type", t), zap.Stringer("kind", b.Kind()))
}

// Remove deletes the first occurrence of b. It reports false for nil or
// absent bindings.
func (c *Collection) Remove(b binding.Untyped) bool {
	if isNil(b) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	t := b.Type()
	bucket := c.buckets[t]
	for i, candidate := range bucket {
		if !same(candidate, b) {
			continue
		}
		bucket = append(bucket[:i:i], bucket[i+1:]...)
		c.count--
		if len(bucket) == 0 {
			delete(c.buckets, t)
			c.dropType(t)
		} else {
			c.buckets[t] = bucket
		}
		c.logDebug("binding removed", zap.Stringer("type", t), zap.Stringer("kind", b.Kind()))
		return true
	}
	return false
}

func (c *Collection) dropType(t reflect.Type) {
	for i, existing := range c.order {
		if existing == t {
			c.order = append(c.order[:i:i], c.order[i+1:]...)
			return
		}
	}
}

// Resolve resolves the first binding added for t
func (c *Collection) Resolve(t reflect.Type) (any, error) {
	bucket, err := c.bucket(t)
	if err != nil {
		return nil, err
	}
	return bucket[0].ResolveAny()
}

// ResolveAll resolves every binding for t, in insertion order
func (c *Collection) ResolveAll(t reflect.Type) ([]any, error) {
	bucket, err := c.bucket(t)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(bucket))
	for _, b := range bucket {
		v, err := b.ResolveAny()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// bucket returns a snapshot of the bindings for t
func (c *Collection) bucket(t reflect.Type) ([]binding.Untyped, error) {
	c.mu.RLock()
	bucket := c.buckets[t]
	snapshot := make([]binding.Untyped, len(bucket))
	copy(snapshot, bucket)
	c.mu.RUnlock()

	if len(snapshot) == 0 {
		return nil, &binding.ResolutionError{
			Type:  t,
			Cause: ErrTypeNotFound.WithMsgf("no binding registered for %v", t).WithData("type", typeString(t)),
		}
	}
	return snapshot, nil
}

// Has reports whether any binding is registered for t
func (c *Collection) Has(t reflect.Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.buckets[t]) > 0
}

// TypeCount returns the number of distinct declared types
func (c *Collection) TypeCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.buckets)
}

// BindingCount returns the total number of bindings
func (c *Collection) BindingCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.count
}

// Types returns the registered types by first insertion
func (c *Collection) Types() []reflect.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]reflect.Type, len(c.order))
	copy(out, c.order)
	return out
}

// Bindings returns a snapshot of all bindings: types by first insertion,
// bindings within a type by insertion
func (c *Collection) Bindings() []binding.Untyped {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]binding.Untyped, 0, c.count)
	for _, t := range c.order {
		out = append(out, c.buckets[t]...)
	}
	return out
}

// All iterates over a snapshot taken when iteration starts
func (c *Collection) All() iter.Seq[binding.Untyped] {
	return func(yield func(binding.Untyped) bool) {
		for _, b := range c.Bindings() {
			if !yield(b) {
				return
			}
		}
	}
}

// Resolve resolves the first binding for T
func Resolve[T any](c *Collection) (T, error) {
	var zero T
	t := reflect.TypeFor[T]()
	bucket, err := c.bucket(t)
	if err != nil {
		return zero, err
	}
	return resolveTyped[T](bucket[0])
}

// ResolveAll resolves every binding for T, in insertion order
func ResolveAll[T any](c *Collection) ([]T, error) {
	t := reflect.TypeFor[T]()
	bucket, err := c.bucket(t)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(bucket))
	for _, b := range bucket {
		v, err := resolveTyped[T](b)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func resolveTyped[T any](b binding.Untyped) (T, error) {
	if typed, ok := b.(binding.Binding[T]); ok {
		return typed.Resolve()
	}
	var zero T
	v, err := b.ResolveAny()
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(T)
	if !ok {
		return zero, &binding.ResolutionError{
			Type:  reflect.TypeFor[T](),
			Cause: binding.ErrResultType.WithMsgf("produced %T, want %v", v, reflect.TypeFor[T]()),
		}
	}
	return out, nil
}

func same(a, b binding.Untyped) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) || !reflect.TypeOf(a).Comparable() {
		return false
	}
	return a == b
}

func isNil(b binding.Untyped) bool {
	if b == nil {
		return true
	}
	rv := reflect.ValueOf(b)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
