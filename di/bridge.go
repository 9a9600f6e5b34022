package di

import (
	"github.com/KOMKZ/go-yogan-binding/binding"
	"github.com/KOMKZ/go-yogan-binding/registry"
	"github.com/samber/do/v2"
)

// ProvideBinding exposes b as a transient do service of type T.
// Every invoke resolves b, so caching follows the binding's own scope.
//
//	di.ProvideBinding[*app.Service](injector, serviceBinding)
//	svc, err := do.Invoke[*app.Service](injector)
func ProvideBinding[T any](i do.Injector, b binding.Binding[T]) {
	do.ProvideTransient(i, func(do.Injector) (T, error) {
		return b.Resolve()
	})
}

// ProvideNamedBinding like ProvideBinding under an explicit service name
func ProvideNamedBinding[T any](i do.Injector, name string, b binding.Binding[T]) {
	do.ProvideNamedTransient(i, name, func(do.Injector) (T, error) {
		return b.Resolve()
	})
}

// ProvideCollection registers c as the injector's binding collection
func ProvideCollection(i do.Injector, c *registry.Collection) {
	do.ProvideValue(i, c)
}

// ProvideFromCollection exposes T as a transient service resolved through the
// injector's collection at invoke time, so bindings added later are visible.
func ProvideFromCollection[T any](i do.Injector) {
	do.ProvideTransient(i, func(inj do.Injector) (T, error) {
		return InvokeFromCollection[T](inj)
	})
}

// InvokeFromCollection resolves T through the injector's binding collection
func InvokeFromCollection[T any](i do.Injector) (T, error) {
	c, err := do.Invoke[*registry.Collection](i)
	if err != nil {
		var zero T
		return zero, err
	}
	return registry.Resolve[T](c)
}

// InvokeAllFromCollection resolves every binding of T, in registration order
func InvokeAllFromCollection[T any](i do.Injector) ([]T, error) {
	c, err := do.Invoke[*registry.Collection](i)
	if err != nil {
		return nil, err
	}
	return registry.ResolveAll[T](c)
}
