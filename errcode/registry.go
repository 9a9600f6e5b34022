package errcode

import (
	"fmt"
	"sync"
)

// Registry error code registry (prevents code conflicts between packages)
type Registry struct {
	mu    sync.RWMutex
	codes map[int]string // code -> module:msgKey
}

var globalRegistry = NewRegistry()

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{codes: make(map[int]string)}
}

// Register registers an error code in the global registry
// Panics when the code is already taken by a different module:msgKey
func Register(err *LayeredError) *LayeredError {
	return globalRegistry.Register(err)
}

// Register registers an error code
func (r *Registry) Register(err *LayeredError) *LayeredError {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := err.Module() + ":" + err.MsgKey()
	if existing, ok := r.codes[err.Code()]; ok {
		if existing != key {
			panic(fmt.Sprintf(
				"error code conflict: code %d is already registered as %s, cannot register as %s",
				err.Code(), existing, key,
			))
		}
		// same code and key: idempotent
		return err
	}

	r.codes[err.Code()] = key
	return err
}

// Lookup returns the module:msgKey registered for a code
func (r *Registry) Lookup(code int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.codes[code]
	return key, ok
}

// Count returns the number of registered codes
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codes)
}

// LookupCode looks up a code in the global registry
func LookupCode(code int) (string, bool) {
	return globalRegistry.Lookup(code)
}
